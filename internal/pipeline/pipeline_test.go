package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"codeberg.org/mise/server/internal/extractor"
	"codeberg.org/mise/server/internal/fetcher"
	"codeberg.org/mise/server/internal/ledger"
	"codeberg.org/mise/server/internal/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	html  string
	err   error
	calls int
}

func (f *fakePages) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.html, f.err
}

type fakeVideos struct {
	video *fetcher.VideoContent
	err   error
}

func (f *fakeVideos) Fetch(_ context.Context, _ string) (*fetcher.VideoContent, error) {
	return f.video, f.err
}

// records which operations ran and returns canned recipes
type stubExtractor struct {
	ops     []extractor.Operation
	result  recipe.Recipe
	failOp  extractor.Operation
	failErr error
	ctxErrs []error
}

func (s *stubExtractor) run(ctx context.Context, op extractor.Operation, in recipe.Recipe) (recipe.Recipe, *extractor.Call, error) {
	s.ops = append(s.ops, op)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())

	call := &extractor.Call{Operation: op, Model: "test-model", Cost: 0.01}

	if op == s.failOp {
		return recipe.Recipe{}, call, s.failErr
	}

	return in, call, nil
}

func (s *stubExtractor) FromPage(ctx context.Context, _, _ string, _ recipe.Language) (recipe.Recipe, *extractor.Call, error) {
	return s.run(ctx, extractor.OpExtractPage, s.result)
}

func (s *stubExtractor) FromPhotos(ctx context.Context, _ []fetcher.Image, _ recipe.Language) (recipe.Recipe, *extractor.Call, error) {
	return s.run(ctx, extractor.OpExtractPhotos, s.result)
}

func (s *stubExtractor) FromTranscript(ctx context.Context, _ *fetcher.VideoContent, _ recipe.Language) (recipe.Recipe, *extractor.Call, error) {
	return s.run(ctx, extractor.OpExtractTranscript, s.result)
}

func (s *stubExtractor) Enhance(ctx context.Context, r recipe.Recipe, _ recipe.Language) (recipe.Recipe, *extractor.Call, error) {
	r.Tips = append(r.Tips, "enhanced")
	return s.run(ctx, extractor.OpEnhance, r)
}

func (s *stubExtractor) Repair(ctx context.Context, r recipe.Recipe, _ []recipe.Issue, _ recipe.Language) (recipe.Recipe, *extractor.Call, error) {
	r.Steps = append(r.Steps,
		recipe.Step{Instruction: "Repaired step number one goes here."},
		recipe.Step{Instruction: "Repaired step number two goes here."},
	)
	return s.run(ctx, extractor.OpRepair, r)
}

func (s *stubExtractor) Translate(ctx context.Context, r recipe.Recipe, _ recipe.Language) (recipe.Recipe, *extractor.Call, error) {
	r.Title = "Sopa de tomate"
	return s.run(ctx, extractor.OpTranslate, r)
}

type memoryCache struct {
	entries map[string]recipe.Recipe
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]recipe.Recipe{}}
}

func (m *memoryCache) Get(_ context.Context, source, locator, language string) (*recipe.Recipe, error) {
	m.gets++
	r, ok := m.entries[source+"|"+locator+"|"+language]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memoryCache) Set(_ context.Context, source, locator, language string, r recipe.Recipe) error {
	m.entries[source+"|"+locator+"|"+language] = r
	return nil
}

func cleanRecipe() recipe.Recipe {
	return recipe.Recipe{
		Title:       "Tomato Soup",
		Servings:    2,
		Ingredients: []string{"800g tinned tomatoes", "1 onion"},
		Steps: []recipe.Step{
			{Instruction: "Soften the onion in a little oil."},
			{Instruction: "Add the tomatoes and simmer for 20 minutes."},
			{Instruction: "Blend until smooth and season to taste."},
		},
	}
}

const structuredPage = `<html><head><script type="application/ld+json">
{"@context":"https://schema.org","@type":"Recipe","name":"Pancakes","recipeYield":"4",
 "recipeIngredient":["1 cup flour","1 egg","1 cup milk"],
 "recipeInstructions":[
  {"@type":"HowToStep","text":"Whisk the flour, egg and milk together."},
  {"@type":"HowToStep","text":"Rest the batter for ten minutes."},
  {"@type":"HowToStep","text":"Fry ladlefuls in a hot buttered pan."}
 ]}
</script></head><body></body></html>`

const plainPage = `<html><body><h1>Grandma's soup</h1><p>Soften the onion, add tomatoes.</p></body></html>`

type harness struct {
	pages  *fakePages
	videos *fakeVideos
	ext    *stubExtractor
	ledger *ledger.Service
	cache  *memoryCache
	p      *Pipeline
}

func newHarness(html string) *harness {
	h := &harness{
		pages:  &fakePages{html: html},
		videos: &fakeVideos{},
		ext:    &stubExtractor{result: cleanRecipe()},
		ledger: ledger.NewService(ledger.NewMemoryStore(), ledger.Limits{Daily: 10, Monthly: 100}),
		cache:  newMemoryCache(),
	}

	h.p = New(Deps{
		Pages:     h.pages,
		Videos:    h.videos,
		Extractor: h.ext,
		Ledger:    h.ledger,
		Cache:     h.cache,
	})

	return h
}

func (h *harness) spent(t *testing.T) float64 {
	t.Helper()
	status, err := h.ledger.Status(context.Background())
	require.NoError(t, err)
	return status.DailyAmount
}

func urlRequest(u string) Request {
	return Request{Source: SourceURL, URL: u, Language: recipe.English}
}

func TestRun_FastPath(t *testing.T) {
	h := newHarness(structuredPage)

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/pancakes"))
	require.NoError(t, err)

	assert.Equal(t, PathFast, res.Path)
	assert.Equal(t, []Stage{StageFetching, StageDetecting, StageFastConvert, StageValidating, StageEnhancing, StageDone}, res.Stages)
	assert.Equal(t, []extractor.Operation{extractor.OpEnhance}, h.ext.ops)
	assert.Equal(t, "Pancakes", res.Recipe.Title)
	assert.Contains(t, res.Recipe.Tips, "enhanced")
	assert.InDelta(t, 0.01, res.Cost, 1e-9)
	assert.InDelta(t, 0.01, h.spent(t), 1e-9)
}

func TestRun_SlowPath(t *testing.T) {
	h := newHarness(plainPage)

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup"))
	require.NoError(t, err)

	assert.Equal(t, PathSlow, res.Path)
	assert.Equal(t, []Stage{StageFetching, StageDetecting, StageSlowExtract, StageValidating, StageDone}, res.Stages)
	assert.Equal(t, []extractor.Operation{extractor.OpExtractPage}, h.ext.ops)
	assert.Equal(t, "Tomato Soup", res.Recipe.Title)
	assert.Empty(t, res.Issues)
}

func TestRun_RepairsOnceWhenIssuesFound(t *testing.T) {
	h := newHarness(plainPage)

	dense := cleanRecipe()
	dense.Ingredients = []string{"a", "b", "c", "d", "e", "f"}
	dense.Steps = dense.Steps[:1]
	h.ext.result = dense

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup"))
	require.NoError(t, err)

	assert.Equal(t, []recipe.Issue{recipe.IssueTooFewSteps}, res.Issues)
	assert.Equal(t, []extractor.Operation{extractor.OpExtractPage, extractor.OpRepair}, h.ext.ops)
	assert.Contains(t, res.Stages, StageRepairing)
	assert.Len(t, res.Recipe.Steps, 3)
	assert.InDelta(t, 0.02, h.spent(t), 1e-9)
}

func TestRun_FetchFailureSpendsNothing(t *testing.T) {
	h := newHarness("")
	h.pages.err = fmt.Errorf("%w: status 404", fetcher.ErrFetch)

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	assert.Equal(t, StageFailed, res.Stages[len(res.Stages)-1])
	assert.Empty(t, h.ext.ops)
	assert.Zero(t, h.spent(t))
}

func TestRun_InvalidURL(t *testing.T) {
	h := newHarness(plainPage)

	_, err := h.p.Run(context.Background(), urlRequest("ftp://example.com/soup"))
	assert.ErrorIs(t, err, ErrFetch)
	assert.Zero(t, h.pages.calls)
}

func TestRun_NoJSONStillRecordsSpend(t *testing.T) {
	h := newHarness(plainPage)
	h.ext.failOp = extractor.OpExtractPage
	h.ext.failErr = extractor.ErrNoStructuredJSON

	_, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup"))
	assert.ErrorIs(t, err, ErrNoStructuredJSON)
	assert.InDelta(t, 0.01, h.spent(t), 1e-9)
	assert.Empty(t, h.cache.entries)
}

func TestRun_EmptyExtractionIsNoRecipe(t *testing.T) {
	h := newHarness(plainPage)
	h.ext.result = recipe.Recipe{Title: "Nothing here"}

	_, err := h.p.Run(context.Background(), urlRequest("https://example.com/blog"))
	assert.ErrorIs(t, err, ErrNoRecipe)
}

func TestRun_DetachedFromClientCancel(t *testing.T) {
	h := newHarness(plainPage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.p.Run(ctx, urlRequest("https://example.com/soup"))
	require.NoError(t, err)

	for _, e := range h.ext.ctxErrs {
		assert.NoError(t, e)
	}
	assert.InDelta(t, 0.01, h.spent(t), 1e-9)
}

func TestRun_CacheHitSkipsWork(t *testing.T) {
	h := newHarness(plainPage)

	_, err := h.p.Run(context.Background(), urlRequest("https://Example.com/soup?utm_source=news"))
	require.NoError(t, err)
	require.Len(t, h.cache.entries, 1)

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup#method"))
	require.NoError(t, err)

	assert.Equal(t, PathCache, res.Path)
	assert.Equal(t, []Stage{StageCacheHit, StageDone}, res.Stages)
	assert.Equal(t, 1, h.pages.calls)
	assert.Len(t, h.ext.ops, 1)
	assert.Zero(t, res.Cost)
}

func TestRun_CacheKeyedByLanguage(t *testing.T) {
	h := newHarness(plainPage)

	_, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup"))
	require.NoError(t, err)

	req := urlRequest("https://example.com/soup")
	req.Language = recipe.ParseLanguage("es")
	res, err := h.p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, PathSlow, res.Path)
	assert.Equal(t, 2, h.pages.calls)
}

func TestRun_WithoutCache(t *testing.T) {
	h := newHarness(plainPage)
	h.p = New(Deps{Pages: h.pages, Videos: h.videos, Extractor: h.ext, Ledger: h.ledger})

	_, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup"))
	require.NoError(t, err)
}

func TestRun_Photos(t *testing.T) {
	h := newHarness("")

	req := Request{
		Source:   SourcePhoto,
		Photos:   []string{"data:image/jpeg;base64,/9j/4AAQSkZJRg=="},
		Language: recipe.English,
	}

	res, err := h.p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, PathSlow, res.Path)
	assert.Equal(t, []extractor.Operation{extractor.OpExtractPhotos}, h.ext.ops)
	assert.Zero(t, h.cache.gets)
}

func TestRun_PhotosRejected(t *testing.T) {
	h := newHarness("")

	_, err := h.p.Run(context.Background(), Request{Source: SourcePhoto, Photos: []string{"not a data uri"}})
	assert.ErrorIs(t, err, ErrFetch)
	assert.Empty(t, h.ext.ops)
}

func TestRun_YouTube(t *testing.T) {
	h := newHarness("")
	h.videos.video = &fetcher.VideoContent{
		VideoID:    "dQw4w9WgXcQ",
		Title:      "Tomato soup",
		Transcript: strings.Repeat("soften the onion then add tomatoes ", 4),
	}

	res, err := h.p.Run(context.Background(), Request{
		Source:   SourceYouTube,
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		Language: recipe.English,
	})
	require.NoError(t, err)

	assert.Equal(t, []extractor.Operation{extractor.OpExtractTranscript}, h.ext.ops)
	assert.Equal(t, "Tomato Soup", res.Recipe.Title)

	// the same video under another URL form hits the cache
	res, err = h.p.Run(context.Background(), Request{
		Source:   SourceYouTube,
		URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Language: recipe.English,
	})
	require.NoError(t, err)
	assert.Equal(t, PathCache, res.Path)
}

func TestRun_YouTubeBadURL(t *testing.T) {
	h := newHarness("")

	_, err := h.p.Run(context.Background(), Request{Source: SourceYouTube, URL: "https://example.com/video"})
	assert.ErrorIs(t, err, ErrFetch)
}

func TestRun_UpstreamFailure(t *testing.T) {
	h := newHarness(structuredPage)
	h.ext.failOp = extractor.OpEnhance
	h.ext.failErr = errors.New("provider exploded")

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/pancakes"))
	require.Error(t, err)
	assert.Equal(t, StageFailed, res.Stages[len(res.Stages)-1])
	assert.Empty(t, h.cache.entries)
}

func TestTranslate(t *testing.T) {
	h := newHarness("")

	res, err := h.p.Translate(context.Background(), cleanRecipe(), recipe.ParseLanguage("es"))
	require.NoError(t, err)

	assert.Equal(t, "Sopa de tomate", res.Recipe.Title)
	assert.Equal(t, []extractor.Operation{extractor.OpTranslate}, h.ext.ops)
	assert.InDelta(t, 0.01, h.spent(t), 1e-9)
}

func TestRun_DropsUnlistedStepIngredients(t *testing.T) {
	video := &fetcher.VideoContent{
		VideoID:    "dQw4w9WgXcQ",
		Title:      "Tomato soup",
		Transcript: strings.Repeat("soften the onion then add tomatoes ", 4),
	}

	tests := []struct {
		name string
		req  Request
		op   extractor.Operation
	}{
		{"page", urlRequest("https://example.com/soup"), extractor.OpExtractPage},
		{"photos", Request{Source: SourcePhoto, Photos: []string{"data:image/jpeg;base64,/9j/4AAQSkZJRg=="}, Language: recipe.English}, extractor.OpExtractPhotos},
		{"youtube", Request{Source: SourceYouTube, URL: "https://youtu.be/dQw4w9WgXcQ", Language: recipe.English}, extractor.OpExtractTranscript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(plainPage)
			h.videos.video = video

			r := cleanRecipe()
			r.Steps[0].Ingredients = []string{"1 onion", "garlic"}
			h.ext.result = r

			res, err := h.p.Run(context.Background(), tt.req)
			require.NoError(t, err)

			assert.Equal(t, []extractor.Operation{tt.op}, h.ext.ops)
			assert.Equal(t, []string{"1 onion"}, res.Recipe.Steps[0].Ingredients)

			for _, cached := range h.cache.entries {
				assert.NotContains(t, cached.Steps[0].Ingredients, "garlic")
			}
		})
	}
}

func TestRun_RepairedStepIngredientsAreLinked(t *testing.T) {
	h := newHarness(plainPage)

	dense := cleanRecipe()
	dense.Ingredients = []string{"a", "b", "c", "d", "e", "f"}
	dense.Steps = []recipe.Step{{Instruction: "Mix everything in a big bowl.", Ingredients: []string{"a", "saffron"}}}
	h.ext.result = dense

	res, err := h.p.Run(context.Background(), urlRequest("https://example.com/soup"))
	require.NoError(t, err)

	require.Contains(t, h.ext.ops, extractor.OpRepair)
	assert.Equal(t, []string{"a"}, res.Recipe.Steps[0].Ingredients)
}

func TestTranslate_KeepsStructure(t *testing.T) {
	h := newHarness("")

	r := cleanRecipe()
	r.Servings = 0
	r.Steps = append(r.Steps, recipe.Step{Instruction: "Serve."})

	res, err := h.p.Translate(context.Background(), r, recipe.ParseLanguage("es"))
	require.NoError(t, err)

	assert.Zero(t, res.Recipe.Servings)
	require.Len(t, res.Recipe.Steps, 4)
	assert.Equal(t, "Serve.", res.Recipe.Steps[3].Instruction)
	assert.NotNil(t, res.Recipe.Steps[3].Ingredients)
	assert.NotNil(t, res.Recipe.Tips)
}
