package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/mise/server/internal/recipe"
)

const recipeShape = `{
  "title": "string",
  "servings": 4,
  "prepTime": "15 min" or null,
  "cookTime": "1 hr 10 min" or null,
  "imageUrl": "https://..." or null,
  "ingredients": ["500g / 1.1 lb chicken thighs", "..."],
  "steps": [
    {"instruction": "string", "ingredients": ["exact text copied from the ingredients list"]}
  ],
  "tips": ["string"],
  "source": "site or cookbook name",
  "sourceUrl": "https://..." or null,
  "author": "string" or null
}`

// shared output contract appended to every system prompt
func contractRules(lang recipe.Language) string {
	var b strings.Builder

	b.WriteString("OUTPUT CONTRACT\n")
	b.WriteString("Return exactly one JSON object with this shape and nothing else:\n")
	b.WriteString(recipeShape)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Write every measurement in dual units, metric first: \"500g / 1.1 lb\", \"240ml / 1 cup\", \"200C / 400F\".\n")
	b.WriteString("- Each step's \"ingredients\" entries must be copied character-for-character from the top-level \"ingredients\" list.\n")
	fmt.Fprintf(&b, "- Keep every step instruction under %d characters; split long actions into separate steps.\n", recipe.MaxStepLength)
	b.WriteString("- Use null for unknown optional fields. Never invent a source URL or image.\n")
	fmt.Fprintf(&b, "- Write all text in %s.\n", lang.Name)

	return b.String()
}

func extractionSystemPrompt(sourceKind string, lang recipe.Language) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You turn %s into a clean, cookable recipe.\n", sourceKind)
	b.WriteString("Ignore life stories, ads, comments and navigation. Keep quantities exact.\n")
	b.WriteString("If the material contains no recipe, return {\"title\": \"\", \"ingredients\": [], \"steps\": []}.\n\n")
	b.WriteString(contractRules(lang))

	return b.String()
}

func enhanceSystemPrompt(lang recipe.Language) string {
	var b strings.Builder

	b.WriteString("You normalize an existing recipe without changing its structure.\n")
	b.WriteString("Rewrite every ingredient quantity in dual units and fill each step's \"ingredients\" with the ingredients it uses.\n")
	b.WriteString("Do not add, remove, merge or reorder steps or ingredients.\n\n")
	b.WriteString(contractRules(lang))

	return b.String()
}

func repairSystemPrompt(issues []recipe.Issue, lang recipe.Language) string {
	var b strings.Builder

	b.WriteString("You fix quality problems in an extracted recipe.\n")
	b.WriteString("Problems found:\n")

	for _, issue := range issues {
		switch issue {
		case recipe.IssueStepsTooLong:
			fmt.Fprintf(&b, "- Some steps exceed %d characters. Split them into shorter, single-action steps.\n", recipe.MaxStepLength)
		case recipe.IssueTooFewSteps:
			b.WriteString("- There are many ingredients but very few steps. Expand the method into clear, separate steps.\n")
		default:
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	b.WriteString("Preserve dual units and ingredient references. Do not change the ingredient list.\n\n")
	b.WriteString(contractRules(lang))

	return b.String()
}

func translateSystemPrompt(lang recipe.Language) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You translate recipes into %s.\n", lang.Name)
	b.WriteString("Translate the title, ingredients, step instructions, step ingredient references and tips.\n")
	b.WriteString("Step ingredient references must match the translated ingredients list exactly.\n")
	b.WriteString("Keep numbers, units, source, sourceUrl, imageUrl and author unchanged.\n\n")
	b.WriteString(contractRules(lang))

	return b.String()
}

func recipeJSON(r recipe.Recipe) string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(data)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
