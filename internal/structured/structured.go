// Package structured finds an embedded schema.org Recipe in a page's JSON-LD
// and converts it to a recipe.Recipe without any AI call.
package structured

import (
	"encoding/json"
	"net/url"
	"strings"

	"codeberg.org/mise/server/internal/recipe"
	"github.com/PuerkitoBio/goquery"
)

// looks for a Recipe object in the page's ld+json scripts. the result still
// needs dual-unit enhancement and step ingredient links.
func Detect(html, pageURL string) (*recipe.Recipe, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}

	var found map[string]any

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return true
		}

		found = findRecipe(data)
		return found == nil
	})

	if found == nil {
		return nil, false
	}

	r := Convert(found, pageURL)
	return &r, true
}

// searches objects, arrays and @graph containers depth-first
func findRecipe(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}

		for _, key := range []string{"@graph", "mainEntity", "mainEntityOfPage", "itemListElement"} {
			if child, ok := t[key]; ok {
				if m := findRecipe(child); m != nil {
					return m
				}
			}
		}

	case []any:
		for _, item := range t {
			if m := findRecipe(item); m != nil {
				return m
			}
		}
	}

	return nil
}

// @type may be a string or a list of strings
func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, item := range t {
			if isRecipeType(item) {
				return true
			}
		}
	}

	return false
}

// maps a schema.org Recipe onto the loose recipe shape and coerces it
func Convert(obj map[string]any, pageURL string) recipe.Recipe {
	raw := map[string]any{
		"title":       stripHTML(stringValue(obj["name"])),
		"servings":    obj["recipeYield"],
		"image":       obj["image"],
		"author":      obj["author"],
		"ingredients": ingredientList(obj["recipeIngredient"]),
		"steps":       instructionList(obj["recipeInstructions"]),
		"source":      sourceName(obj["publisher"], pageURL),
		"sourceUrl":   pageURL,
	}

	if d := FormatDuration(stringValue(obj["prepTime"])); d != "" {
		raw["prepTime"] = d
	}

	cook := stringValue(obj["cookTime"])
	if cook == "" {
		cook = stringValue(obj["totalTime"])
	}

	if d := FormatDuration(cook); d != "" {
		raw["cookTime"] = d
	}

	return recipe.Coerce(raw)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func ingredientList(v any) []any {
	var items []any

	switch t := v.(type) {
	case []any:
		items = t
	case string:
		items = []any{t}
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		if s := stripHTML(stringValue(item)); s != "" {
			out = append(out, s)
		}
	}

	return out
}

// flattens strings, HowToStep and HowToSection into plain instruction strings
func instructionList(v any) []any {
	out := []any{}

	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(stripHTML(t), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}

	case []any:
		for _, item := range t {
			out = append(out, instructionList(item)...)
		}

	case map[string]any:
		if section, ok := t["itemListElement"]; ok {
			return instructionList(section)
		}

		text := stringValue(t["text"])
		if text == "" {
			text = stringValue(t["name"])
		}

		if text = stripHTML(text); text != "" {
			out = append(out, text)
		}
	}

	return out
}

func sourceName(publisher any, pageURL string) string {
	switch t := publisher.(type) {
	case map[string]any:
		if name := stringValue(t["name"]); name != "" {
			return name
		}
	case string:
		if t != "" {
			return t
		}
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(u.Hostname(), "www.")
}

// removes markup and decodes entities, keeping line breaks between blocks
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	doc.Find("br, p, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AfterHtml("\n")
	})

	return strings.TrimSpace(doc.Text())
}
