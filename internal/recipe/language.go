package recipe

import "strings"

// an output language the extractor can write in
type Language struct {
	Code string
	Name string
}

var English = Language{Code: "en", Name: "English"}

var languages = map[string]Language{
	"en": English,
	"es": {Code: "es", Name: "Spanish"},
	"fr": {Code: "fr", Name: "French"},
	"de": {Code: "de", Name: "German"},
	"it": {Code: "it", Name: "Italian"},
	"pt": {Code: "pt", Name: "Portuguese"},
	"nl": {Code: "nl", Name: "Dutch"},
	"ja": {Code: "ja", Name: "Japanese"},
	"zh": {Code: "zh", Name: "Chinese"},
	"ko": {Code: "ko", Name: "Korean"},
}

// resolves a language code such as "fr" or "fr-CA"; unknown values fall back
// to English
func ParseLanguage(code string) Language {
	if lang, ok := languages[baseCode(code)]; ok {
		return lang
	}

	return English
}

// reports whether code names a supported language, ignoring any region
func IsSupported(code string) bool {
	_, ok := languages[baseCode(code)]
	return ok
}

func baseCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}

	return code
}
