package recipe

import (
	"encoding/json"
	"errors"
	"strings"
)

// returned when a model response holds no parseable JSON object
var ErrNoJSON = errors.New("no JSON object found in response")

// returns the first balanced, valid JSON object embedded in text.
// braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return "", ErrNoJSON
}

// returns the index of the brace closing the one at start, or -1
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
