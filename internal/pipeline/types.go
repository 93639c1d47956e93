package pipeline

import (
	"context"
	"errors"

	"codeberg.org/mise/server/internal/extractor"
	"codeberg.org/mise/server/internal/fetcher"
	"codeberg.org/mise/server/internal/ledger"
	"codeberg.org/mise/server/internal/llm"
	"codeberg.org/mise/server/internal/recipe"
)

var (
	// source material could not be retrieved (400)
	ErrFetch = fetcher.ErrFetch

	// the model answered without a JSON object (500)
	ErrNoStructuredJSON = extractor.ErrNoStructuredJSON

	// the AI provider failed (500)
	ErrUpstream = llm.ErrUpstream

	// the source was readable but held no recipe (400)
	ErrNoRecipe = errors.New("no recipe found in source")

	// the recipe handed in for translation is unusable (400)
	ErrInvalidRecipe = extractor.ErrInvalidRecipe
)

type Source string

const (
	SourceURL     Source = "url"
	SourcePhoto   Source = "photo"
	SourceYouTube Source = "youtube"
)

type Stage string

const (
	StageCacheHit    Stage = "cache_hit"
	StageFetching    Stage = "fetching"
	StageDetecting   Stage = "detecting"
	StageFastConvert Stage = "fast_convert"
	StageSlowExtract Stage = "slow_extract"
	StageValidating  Stage = "validating"
	StageRepairing   Stage = "repairing"
	StageEnhancing   Stage = "enhancing"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// which route produced the recipe
type Path string

const (
	PathFast  Path = "fast"
	PathSlow  Path = "slow"
	PathCache Path = "cache"
)

type Request struct {
	Source   Source
	URL      string
	Photos   []string
	Language recipe.Language
}

type Result struct {
	Recipe recipe.Recipe
	Path   Path
	Stages []Stage
	Issues []recipe.Issue
	// total USD recorded against the ledger for this run
	Cost  float64
	Calls []extractor.Call
}

func (r *Result) enter(s Stage) {
	r.Stages = append(r.Stages, s)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type VideoFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.VideoContent, error)
}

// the AI operations the pipeline drives
type RecipeExtractor interface {
	FromPage(ctx context.Context, html, pageURL string, lang recipe.Language) (recipe.Recipe, *extractor.Call, error)
	FromPhotos(ctx context.Context, images []fetcher.Image, lang recipe.Language) (recipe.Recipe, *extractor.Call, error)
	FromTranscript(ctx context.Context, video *fetcher.VideoContent, lang recipe.Language) (recipe.Recipe, *extractor.Call, error)
	Enhance(ctx context.Context, r recipe.Recipe, lang recipe.Language) (recipe.Recipe, *extractor.Call, error)
	Repair(ctx context.Context, r recipe.Recipe, issues []recipe.Issue, lang recipe.Language) (recipe.Recipe, *extractor.Call, error)
	Translate(ctx context.Context, r recipe.Recipe, lang recipe.Language) (recipe.Recipe, *extractor.Call, error)
}

type SpendRecorder interface {
	RecordSpend(ctx context.Context, amount float64) (*ledger.Ledger, error)
}

type RecipeCache interface {
	Get(ctx context.Context, source, locator, language string) (*recipe.Recipe, error)
	Set(ctx context.Context, source, locator, language string, r recipe.Recipe) error
}

type Deps struct {
	Pages     PageFetcher
	Videos    VideoFetcher
	Extractor RecipeExtractor
	Ledger    SpendRecorder
	// optional
	Cache RecipeCache
}
