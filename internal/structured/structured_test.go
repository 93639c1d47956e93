package structured

import (
	"testing"

	"codeberg.org/mise/server/internal/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(ldjson string) string {
	return `<html><head><title>x</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"WebSite","name":"Example"}</script>
<script type="application/ld+json">` + ldjson + `</script>
</head><body><h1>Hello</h1></body></html>`
}

func TestDetect_SimpleRecipe(t *testing.T) {
	html := page(`{
		"@context": "https://schema.org",
		"@type": "Recipe",
		"name": "Lemon Pasta",
		"recipeYield": "4 servings",
		"prepTime": "PT15M",
		"recipeIngredient": ["200g spaghetti", "1 lemon", "50g parmesan"],
		"recipeInstructions": [
			"Boil the spaghetti in salted water until al dente.",
			"Zest and juice the lemon into a large bowl.",
			"Toss the pasta with lemon and grated parmesan."
		]
	}`)

	r, ok := Detect(html, "https://www.example.com/lemon-pasta")
	require.True(t, ok)

	assert.Equal(t, "Lemon Pasta", r.Title)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, "15 min", recipe.Deref(r.PrepTime))
	require.Len(t, r.Steps, 3)
	for _, s := range r.Steps {
		assert.Equal(t, []string{}, s.Ingredients)
	}
	assert.Equal(t, []string{"200g spaghetti", "1 lemon", "50g parmesan"}, r.Ingredients)
	assert.Equal(t, "example.com", r.Source)
	assert.Equal(t, "https://www.example.com/lemon-pasta", recipe.Deref(r.SourceURL))
}

func TestDetect_GraphWithTypeArrayAndSections(t *testing.T) {
	html := page(`{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "Organization", "name": "Example Kitchen"},
			{
				"@type": ["Recipe", "NewsArticle"],
				"name": "Beef &amp; Guinness Stew",
				"recipeYield": ["6", "6 bowls"],
				"cookTime": "PT2H30M",
				"image": [{"@type": "ImageObject", "url": "https://cdn.example.com/stew.jpg"}],
				"author": {"@type": "Person", "name": "Siobhan"},
				"publisher": {"@type": "Organization", "name": "Example Kitchen"},
				"recipeIngredient": ["1kg beef chuck", "<b>440ml</b> Guinness"],
				"recipeInstructions": [
					{
						"@type": "HowToSection",
						"name": "Prep",
						"itemListElement": [
							{"@type": "HowToStep", "text": "Cut the beef into large chunks and season well."},
							{"@type": "HowToStep", "text": "Brown the beef in batches in a hot pot."}
						]
					},
					{"@type": "HowToStep", "text": "<p>Add the Guinness and simmer for two hours.</p>"}
				]
			}
		]
	}`)

	r, ok := Detect(html, "https://example.com/stew")
	require.True(t, ok)

	assert.Equal(t, "Beef & Guinness Stew", r.Title)
	assert.Equal(t, 6, r.Servings)
	assert.Equal(t, "2 hr 30 min", recipe.Deref(r.CookTime))
	assert.Nil(t, r.PrepTime)
	assert.Equal(t, "https://cdn.example.com/stew.jpg", recipe.Deref(r.ImageURL))
	assert.Equal(t, "Siobhan", recipe.Deref(r.Author))
	assert.Equal(t, "Example Kitchen", r.Source)
	assert.Equal(t, []string{"1kg beef chuck", "440ml Guinness"}, r.Ingredients)
	require.Len(t, r.Steps, 3)
	assert.Equal(t, "Add the Guinness and simmer for two hours.", r.Steps[2].Instruction)
}

func TestDetect_NoRecipe(t *testing.T) {
	_, ok := Detect(page(`{"@type":"Article","name":"Ten dinners"}`), "https://example.com")
	assert.False(t, ok)

	_, ok = Detect(`<html><body><p>just text</p></body></html>`, "https://example.com")
	assert.False(t, ok)
}

func TestDetect_SkipsMalformedScripts(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{ this is not json</script>
<script type="application/ld+json">[{"@type":"Recipe","name":"Toast","recipeInstructions":"Toast the bread until golden brown.\nButter it while still hot."}]</script>
</head></html>`

	r, ok := Detect(html, "https://example.com/toast")
	require.True(t, ok)
	assert.Equal(t, "Toast", r.Title)
	assert.Len(t, r.Steps, 2)
	assert.Equal(t, recipe.DefaultServings, r.Servings)
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]string{
		"PT15M":      "15 min",
		"PT1H15M":    "1 hr 15 min",
		"PT90M":      "1 hr 30 min",
		"PT2H":       "2 hr",
		"P0DT0H45M":  "45 min",
		"P1D":        "24 hr",
		"PT0M":       "",
		"":           "",
		"20 minutes": "20 minutes",
	}

	for in, want := range tests {
		assert.Equal(t, want, FormatDuration(in), in)
	}
}
