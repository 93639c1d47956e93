// Package extractor wraps the generative model behind recipe-shaped
// operations. Every operation demands a single JSON object back; a response
// without one is a failure, never a partial recipe.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"codeberg.org/mise/server/internal/fetcher"
	"codeberg.org/mise/server/internal/llm"
	"codeberg.org/mise/server/internal/metrics"
	"codeberg.org/mise/server/internal/recipe"
)

type Extractor struct {
	generator llm.TextGenerator
}

func New(generator llm.TextGenerator) *Extractor {
	return &Extractor{generator: generator}
}

// slow path for webpages without structured data
func (e *Extractor) FromPage(ctx context.Context, html, pageURL string, lang recipe.Language) (recipe.Recipe, *Call, error) {
	text := truncateRunes(VisibleText(html), MaxPageChars)
	if strings.TrimSpace(text) == "" {
		return recipe.Recipe{}, nil, fmt.Errorf("%w: page has no readable text", fetcher.ErrFetch)
	}

	user := fmt.Sprintf("Page URL: %s\n\nPage text:\n%s", pageURL, text)

	r, call, err := e.extract(ctx, OpExtractPage, extractionSystemPrompt("the text of a recipe webpage", lang), user, nil)
	if err != nil {
		return r, call, err
	}

	r.SourceURL = recipe.StringPtr(pageURL)

	if r.Source == "" {
		if u, err := url.Parse(pageURL); err == nil {
			r.Source = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}

	if r.ImageURL == nil {
		r.ImageURL = recipe.StringPtr(OpenGraphImage(html))
	}

	return recipe.LinkStepIngredients(r), call, nil
}

// reads cookbook photos; only the first fetcher.MaxPhotos are sent
func (e *Extractor) FromPhotos(ctx context.Context, images []fetcher.Image, lang recipe.Language) (recipe.Recipe, *Call, error) {
	if len(images) > fetcher.MaxPhotos {
		images = images[:fetcher.MaxPhotos]
	}

	parts := make([]llm.Image, 0, len(images))
	for _, img := range images {
		parts = append(parts, llm.Image{MediaType: img.MediaType, Data: img.Data})
	}

	user := fmt.Sprintf("These %d photos show one recipe, possibly across several pages. Combine them.", len(parts))

	r, call, err := e.extract(ctx, OpExtractPhotos, extractionSystemPrompt("photographs of cookbook pages", lang), user, parts)
	if err != nil {
		return r, call, err
	}

	// photos never carry a web address
	r.SourceURL = nil
	r.ImageURL = nil

	return recipe.LinkStepIngredients(r), call, nil
}

// reads a cooking video's transcript and description
func (e *Extractor) FromTranscript(ctx context.Context, video *fetcher.VideoContent, lang recipe.Language) (recipe.Recipe, *Call, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Video title: %s\n\n", video.Title)

	if video.FromCaptions && video.Description != "" {
		fmt.Fprintf(&b, "Video description:\n%s\n\n", truncateRunes(video.Description, MaxTranscriptChars/4))
	}

	fmt.Fprintf(&b, "Transcript:\n%s", truncateRunes(video.Transcript, MaxTranscriptChars))

	r, call, err := e.extract(ctx, OpExtractTranscript, extractionSystemPrompt("a cooking video transcript", lang), b.String(), nil)
	if err != nil {
		return r, call, err
	}

	r.SourceURL = recipe.StringPtr("https://www.youtube.com/watch?v=" + video.VideoID)
	r.ImageURL = recipe.StringPtr("https://i.ytimg.com/vi/" + video.VideoID + "/hqdefault.jpg")

	if r.Source == "" {
		r.Source = "YouTube"
	}

	return recipe.LinkStepIngredients(r), call, nil
}

// converts measurements to dual units and backfills step ingredient links
func (e *Extractor) Enhance(ctx context.Context, in recipe.Recipe, lang recipe.Language) (recipe.Recipe, *Call, error) {
	out, call, err := e.extract(ctx, OpEnhance, enhanceSystemPrompt(lang), recipeJSON(in), nil)
	if err != nil {
		return in, call, err
	}

	out = keepStructure(in, out)
	// the title follows the output language like every other text field
	if lang.Code == recipe.English.Code || out.Title == recipe.DefaultTitle {
		out.Title = in.Title
	}
	out.PrepTime = in.PrepTime
	out.CookTime = in.CookTime

	return recipe.LinkStepIngredients(out), call, nil
}

// one-shot fix for validation issues; the result is not re-validated
func (e *Extractor) Repair(ctx context.Context, in recipe.Recipe, issues []recipe.Issue, lang recipe.Language) (recipe.Recipe, *Call, error) {
	out, call, err := e.extract(ctx, OpRepair, repairSystemPrompt(issues, lang), recipeJSON(in), nil)
	if err != nil {
		return in, call, err
	}

	out = keepStructure(in, out)
	return recipe.LinkStepIngredients(out), call, nil
}

// re-expresses the free text in lang, keeping identity fields byte-for-byte
func (e *Extractor) Translate(ctx context.Context, in recipe.Recipe, lang recipe.Language) (recipe.Recipe, *Call, error) {
	if strings.TrimSpace(in.Title) == "" {
		return in, nil, ErrInvalidRecipe
	}

	out, call, err := e.extract(ctx, OpTranslate, translateSystemPrompt(lang), recipeJSON(in), nil)
	if err != nil {
		return in, call, err
	}

	out = keepStructure(in, out)
	return recipe.LinkStepIngredients(out), call, nil
}

// restores identity and numeric fields a transform must not touch
func keepStructure(in, out recipe.Recipe) recipe.Recipe {
	out.Source = in.Source
	out.SourceURL = in.SourceURL
	out.ImageURL = in.ImageURL
	out.Author = in.Author
	out.Servings = in.Servings

	return out
}

func (e *Extractor) extract(ctx context.Context, op Operation, system, user string, images []llm.Image) (recipe.Recipe, *Call, error) {
	resp, err := e.generator.GenerateText(ctx, llm.TextGenerationRequest{
		SystemPrompt: system,
		Messages:     []llm.Message{{Role: "user", Content: user, Images: images}},
	})
	if err != nil {
		metrics.AICalls.WithLabelValues(string(op), "error").Inc()

		// a billed call whose body was unreadable still has to reach the ledger
		var call *Call
		if resp != nil && resp.Usage != (llm.Usage{}) {
			call = e.newCall(op, resp.Usage)
		}
		return recipe.Recipe{}, call, fmt.Errorf("%s: %w", op, err)
	}

	call := e.newCall(op, resp.Usage)

	r, err := recipe.Parse(resp.Text)
	if err != nil {
		metrics.AICalls.WithLabelValues(string(op), "no_json").Inc()
		if errors.Is(err, recipe.ErrNoJSON) {
			return recipe.Recipe{}, call, fmt.Errorf("%s: %w", op, ErrNoStructuredJSON)
		}
		return recipe.Recipe{}, call, fmt.Errorf("%s: %w", op, err)
	}

	metrics.AICalls.WithLabelValues(string(op), "ok").Inc()
	return r, call, nil
}

func (e *Extractor) newCall(op Operation, usage llm.Usage) *Call {
	return &Call{
		Operation: op,
		Model:     e.generator.Model(),
		Usage:     usage,
		Cost:      llm.Cost(e.generator.Provider(), e.generator.Model(), usage),
	}
}
