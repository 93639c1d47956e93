// Package pipeline runs one extraction through its stages in strict order:
// fetching, detecting, fast convert or slow extract, validating, at most one
// repair, and enhancing for the fast path. Every model call's cost reaches
// the spending ledger as soon as the call returns.
package pipeline

import (
	"context"
	"fmt"

	"codeberg.org/mise/server/internal/extractor"
	"codeberg.org/mise/server/internal/fetcher"
	"codeberg.org/mise/server/internal/logger"
	"codeberg.org/mise/server/internal/metrics"
	"codeberg.org/mise/server/internal/recipe"
	"codeberg.org/mise/server/internal/structured"
)

type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// runs the extraction. work continues on a context detached from ctx, so a
// client disconnect neither cancels in-flight calls nor loses their cost.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	work := context.WithoutCancel(ctx)
	res := &Result{}

	var err error

	switch req.Source {
	case SourceURL:
		err = p.runURL(work, req, res)
	case SourcePhoto:
		err = p.runPhotos(work, req, res)
	case SourceYouTube:
		err = p.runYouTube(work, req, res)
	default:
		err = fmt.Errorf("unknown source %q", req.Source)
	}

	if err != nil {
		res.enter(StageFailed)
		metrics.Extractions.WithLabelValues(string(req.Source), string(res.Path), "failed").Inc()
		return res, err
	}

	res.enter(StageDone)
	metrics.Extractions.WithLabelValues(string(req.Source), string(res.Path), "ok").Inc()

	return res, nil
}

func (p *Pipeline) runURL(ctx context.Context, req Request, res *Result) error {
	pageURL, err := fetcher.ValidateURL(req.URL)
	if err != nil {
		return err
	}

	locator := fetcher.NormalizeURL(pageURL)
	if p.fromCache(ctx, SourceURL, locator, req.Language, res) {
		return nil
	}

	res.enter(StageFetching)
	html, err := p.deps.Pages.Fetch(ctx, pageURL)
	if err != nil {
		return err
	}

	res.enter(StageDetecting)
	if found, ok := structured.Detect(html, pageURL); ok {
		res.Path = PathFast
		res.enter(StageFastConvert)

		r, err := p.validateAndRepair(ctx, *found, req.Language, res)
		if err != nil {
			return err
		}

		res.enter(StageEnhancing)
		r, call, err := p.deps.Extractor.Enhance(ctx, r, req.Language)
		p.record(ctx, call, res)
		if err != nil {
			return err
		}

		res.Recipe = r
	} else {
		res.Path = PathSlow
		res.enter(StageSlowExtract)

		r, call, err := p.deps.Extractor.FromPage(ctx, html, pageURL, req.Language)
		p.record(ctx, call, res)
		if err != nil {
			return err
		}

		if res.Recipe, err = p.validateAndRepair(ctx, r, req.Language, res); err != nil {
			return err
		}
	}

	p.toCache(ctx, SourceURL, locator, req.Language, res.Recipe)
	return nil
}

func (p *Pipeline) runPhotos(ctx context.Context, req Request, res *Result) error {
	res.Path = PathSlow

	res.enter(StageFetching)
	images, err := fetcher.Photos(req.Photos)
	if err != nil {
		return err
	}

	res.enter(StageSlowExtract)
	r, call, err := p.deps.Extractor.FromPhotos(ctx, images, req.Language)
	p.record(ctx, call, res)
	if err != nil {
		return err
	}

	res.Recipe, err = p.validateAndRepair(ctx, r, req.Language, res)
	return err
}

func (p *Pipeline) runYouTube(ctx context.Context, req Request, res *Result) error {
	videoID, ok := fetcher.ParseVideoID(req.URL)
	if !ok {
		return fmt.Errorf("%w: no video id in %q", ErrFetch, req.URL)
	}

	if p.fromCache(ctx, SourceYouTube, videoID, req.Language, res) {
		return nil
	}

	res.Path = PathSlow

	res.enter(StageFetching)
	video, err := p.deps.Videos.Fetch(ctx, req.URL)
	if err != nil {
		return err
	}

	res.enter(StageSlowExtract)
	r, call, err := p.deps.Extractor.FromTranscript(ctx, video, req.Language)
	p.record(ctx, call, res)
	if err != nil {
		return err
	}

	if res.Recipe, err = p.validateAndRepair(ctx, r, req.Language, res); err != nil {
		return err
	}

	p.toCache(ctx, SourceYouTube, videoID, req.Language, res.Recipe)
	return nil
}

// structural repair, quality checks and the single bounded AI repair
func (p *Pipeline) validateAndRepair(ctx context.Context, r recipe.Recipe, lang recipe.Language, res *Result) (recipe.Recipe, error) {
	res.enter(StageValidating)

	r = recipe.LinkStepIngredients(recipe.Coerce(r))
	if len(r.Ingredients) == 0 && len(r.Steps) == 0 {
		return r, ErrNoRecipe
	}

	res.Issues = recipe.Validate(r)
	if len(res.Issues) == 0 {
		return r, nil
	}

	res.enter(StageRepairing)
	repaired, call, err := p.deps.Extractor.Repair(ctx, r, res.Issues, lang)
	p.record(ctx, call, res)
	if err != nil {
		return r, err
	}

	// accepted as best effort; not validated again
	return recipe.LinkStepIngredients(recipe.Coerce(repaired)), nil
}

// translates a finished recipe and records the call's cost
func (p *Pipeline) Translate(ctx context.Context, r recipe.Recipe, lang recipe.Language) (*Result, error) {
	work := context.WithoutCancel(ctx)
	res := &Result{Path: PathSlow}

	translated, call, err := p.deps.Extractor.Translate(work, recipe.FillSlices(r), lang)
	p.record(work, call, res)
	if err != nil {
		res.enter(StageFailed)
		return res, err
	}

	res.Recipe = translated
	res.enter(StageDone)

	return res, nil
}

// records spend immediately; a ledger failure is logged, not fatal to the request
func (p *Pipeline) record(ctx context.Context, call *extractor.Call, res *Result) {
	if call == nil {
		return
	}

	res.Calls = append(res.Calls, *call)
	res.Cost += call.Cost

	if _, err := p.deps.Ledger.RecordSpend(ctx, call.Cost); err != nil {
		logger.FromContext(ctx).Error("failed to record spend",
			"operation", call.Operation,
			"cost_usd", call.Cost,
			"error", err,
		)
	}
}

func (p *Pipeline) fromCache(ctx context.Context, source Source, locator string, lang recipe.Language, res *Result) bool {
	if p.deps.Cache == nil {
		return false
	}

	cached, err := p.deps.Cache.Get(ctx, string(source), locator, lang.Code)
	if err != nil {
		logger.FromContext(ctx).Warn("recipe cache read failed", "error", err)
		return false
	}

	if cached == nil {
		return false
	}

	res.Path = PathCache
	res.Recipe = *cached
	res.enter(StageCacheHit)

	return true
}

func (p *Pipeline) toCache(ctx context.Context, source Source, locator string, lang recipe.Language, r recipe.Recipe) {
	if p.deps.Cache == nil {
		return
	}

	if err := p.deps.Cache.Set(ctx, string(source), locator, lang.Code, r); err != nil {
		logger.FromContext(ctx).Warn("recipe cache write failed", "error", err)
	}
}
