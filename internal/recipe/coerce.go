package recipe

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var firstInt = regexp.MustCompile(`\d+`)

// parses the first JSON object in text and coerces it into a Recipe
func Parse(text string) (Recipe, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return Recipe{}, err
	}

	var raw any
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Recipe{}, ErrNoJSON
	}

	return Coerce(raw), nil
}

// normalizes a loosely shaped value (decoded JSON, or a Recipe) into a Recipe
// and applies structural repair: default title and servings, empty slices
// instead of missing ones, string steps wrapped, noise steps dropped.
func Coerce(raw any) Recipe {
	if r, ok := raw.(Recipe); ok {
		return repair(r)
	}

	if r, ok := raw.(*Recipe); ok && r != nil {
		return repair(*r)
	}

	m, _ := raw.(map[string]any)

	r := Recipe{
		Title:       asString(m["title"]),
		Servings:    asServings(m["servings"]),
		PrepTime:    StringPtr(asString(m["prepTime"])),
		CookTime:    StringPtr(asString(m["cookTime"])),
		ImageURL:    StringPtr(asImage(first(m, "imageUrl", "image"))),
		Ingredients: asStrings(m["ingredients"]),
		Steps:       asSteps(m["steps"]),
		Tips:        asStrings(m["tips"]),
		Source:      asString(m["source"]),
		SourceURL:   StringPtr(asString(m["sourceUrl"])),
		Author:      StringPtr(asName(m["author"])),
	}

	return repair(r)
}

func repair(r Recipe) Recipe {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = DefaultTitle
	}

	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}

	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}

	if r.Tips == nil {
		r.Tips = []string{}
	}

	steps := make([]Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		s.Instruction = strings.TrimSpace(s.Instruction)
		if utf8.RuneCountInString(s.Instruction) <= MinStepLength {
			continue
		}

		if s.Ingredients == nil {
			s.Ingredients = []string{}
		}

		steps = append(steps, s)
	}
	r.Steps = steps

	return r
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}

	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string

		switch t := item.(type) {
		case map[string]any:
			s = asString(first(t, "text", "name", "item"))
		default:
			s = asString(t)
		}

		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

func asServings(v any) int {
	switch t := v.(type) {
	case float64:
		if t >= 1 && !math.IsInf(t, 0) {
			return int(t)
		}
	case string:
		if n, err := strconv.Atoi(firstInt.FindString(t)); err == nil && n > 0 {
			return n
		}
	case []any:
		for _, item := range t {
			if n := asServings(item); n > 0 {
				return n
			}
		}
	}

	return 0
}

// image may be a url string, an ImageObject-like map, or a list of either
func asImage(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return asString(first(t, "url", "contentUrl"))
	case []any:
		for _, item := range t {
			if s := asImage(item); s != "" {
				return s
			}
		}
	}

	return ""
}

// author may be a string, a Person-like map, or a list of either
func asName(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return asString(t["name"])
	case []any:
		names := make([]string, 0, len(t))
		for _, item := range t {
			if s := asName(item); s != "" {
				names = append(names, s)
			}
		}
		return strings.Join(names, ", ")
	}

	return ""
}

func asSteps(v any) []Step {
	items, ok := v.([]any)
	if !ok {
		return []Step{}
	}

	steps := make([]Step, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			steps = append(steps, Step{Instruction: t, Ingredients: []string{}})
		case map[string]any:
			steps = append(steps, Step{
				Instruction: asString(first(t, "instruction", "text")),
				Ingredients: asStrings(t["ingredients"]),
			})
		}
	}

	return steps
}

// replaces nil slices with empty ones without touching any values
func FillSlices(r Recipe) Recipe {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}

	if r.Tips == nil {
		r.Tips = []string{}
	}

	steps := make([]Step, len(r.Steps))
	for i, s := range r.Steps {
		if s.Ingredients == nil {
			s.Ingredients = []string{}
		}
		steps[i] = s
	}
	r.Steps = steps

	return r
}
