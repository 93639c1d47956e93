package recipes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"codeberg.org/mise/server/internal/auth"
	apierrors "codeberg.org/mise/server/internal/errors"
	"codeberg.org/mise/server/internal/logger"
	"codeberg.org/mise/server/internal/pipeline"
	"codeberg.org/mise/server/internal/recipe"
	"codeberg.org/mise/server/internal/usage"
	"github.com/gin-gonic/gin"
)

// quota checks and commits
type Governor interface {
	CanExtract(ctx context.Context, caller usage.Caller) (*usage.Decision, error)
	CommitExtraction(ctx context.Context, caller usage.Caller) (int, error)
}

type Extractor interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Translate(ctx context.Context, r recipe.Recipe, lang recipe.Language) (*pipeline.Result, error)
}

type Breaker interface {
	IsPaused(ctx context.Context) (bool, error)
}

type Handlers struct {
	governor  Governor
	extractor Extractor
	breaker   Breaker
}

func NewHandlers(governor Governor, extractor Extractor, breaker Breaker) *Handlers {
	return &Handlers{governor: governor, extractor: extractor, breaker: breaker}
}

// builds the quota identity from the auth claims and the body fingerprint
func callerFrom(c *gin.Context, fingerprint string) usage.Caller {
	userID, _ := auth.GetUserID(c)

	return usage.Caller{
		UserID:      userID,
		Tier:        usage.ParseTier(auth.GetTier(c)),
		Fingerprint: fingerprint,
		IP:          c.ClientIP(),
	}
}

// CleanURL godoc
// @Summary Extract a recipe from a web page
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body CleanURLRequest true "Page to clean"
// @Success 200 {object} CleanResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.QuotaResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipe/clean-url [post]
func (h *Handlers) CleanURL(c *gin.Context) {
	var req CleanURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	h.extract(c, callerFrom(c, req.Fingerprint), pipeline.Request{
		Source:   pipeline.SourceURL,
		URL:      req.URL,
		Language: recipe.ParseLanguage(req.Language),
	})
}

// CleanPhoto godoc
// @Summary Extract a recipe from photos of a cookbook page
// @Description Only the first 4 photos are processed.
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body CleanPhotoRequest true "Base64 data URIs"
// @Success 200 {object} CleanResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.QuotaResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipe/clean-photo [post]
func (h *Handlers) CleanPhoto(c *gin.Context) {
	var req CleanPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	h.extract(c, callerFrom(c, req.Fingerprint), pipeline.Request{
		Source:   pipeline.SourcePhoto,
		Photos:   req.Photos,
		Language: recipe.ParseLanguage(req.Language),
	})
}

// CleanYouTube godoc
// @Summary Extract a recipe from a cooking video
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body CleanYouTubeRequest true "Video to clean"
// @Success 200 {object} CleanResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.QuotaResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipe/clean-youtube [post]
func (h *Handlers) CleanYouTube(c *gin.Context) {
	var req CleanYouTubeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	h.extract(c, callerFrom(c, req.Fingerprint), pipeline.Request{
		Source:   pipeline.SourceYouTube,
		URL:      req.URL,
		Language: recipe.ParseLanguage(req.Language),
	})
}

// check quota, run the pipeline, then charge the caller
func (h *Handlers) extract(c *gin.Context, caller usage.Caller, req pipeline.Request) {
	ctx := c.Request.Context()

	decision, err := h.governor.CanExtract(ctx, caller)
	if err != nil {
		apierrors.InternalError(c, "failed to check usage", err)
		return
	}

	if !decision.Allowed {
		apierrors.PaymentRequired(c, quotaResponse(decision))
		return
	}

	res, err := h.extractor.Run(ctx, req)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	// the work is already paid for, so the commit uses a detached context
	remaining, err := h.governor.CommitExtraction(context.WithoutCancel(ctx), caller)
	if err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			apierrors.PaymentRequired(c, apierrors.QuotaResponse{
				RequiresSignup: !caller.Authenticated(),
				Upgrade:        caller.Authenticated(),
				Message:        "You've reached your recipe limit.",
			})
			return
		}

		apierrors.InternalError(c, "failed to record usage", err)
		return
	}

	logger.FromContext(ctx).Info("recipe extracted",
		"source", req.Source,
		"path", res.Path,
		"cost_usd", res.Cost,
		"stages", res.Stages,
		"remaining", remaining,
	)

	c.JSON(http.StatusOK, CleanResponse{
		Recipe:           res.Recipe,
		RecipesRemaining: remaining,
	})
}

// Translate godoc
// @Summary Translate a cleaned recipe
// @Description Requires an active paid subscription. Source, URLs and numbers are preserved.
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body TranslateRequest true "Recipe and target language"
// @Success 200 {object} TranslateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.QuotaResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /recipe/translate [post]
// @Security BearerAuth
func (h *Handlers) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	tier := usage.ParseTier(auth.GetTier(c))
	if _, ok := auth.GetUserID(c); !ok || tier == usage.TierNone {
		apierrors.PaymentRequired(c, apierrors.QuotaResponse{
			Error:   "subscription_required",
			Upgrade: true,
			Message: "Translation is available on paid plans.",
		})
		return
	}

	if strings.TrimSpace(req.Recipe.Title) == "" {
		apierrors.BadRequest(c, "recipe title is required", nil)
		return
	}

	// unknown targets are refused, not defaulted
	if !recipe.IsSupported(req.TargetLanguage) {
		apierrors.BadRequest(c, "unsupported target language", nil)
		return
	}

	paused, err := h.breaker.IsPaused(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "failed to check spending", err)
		return
	}

	if paused {
		apierrors.PaymentRequired(c, apierrors.QuotaResponse{
			Error:   apierrors.CodeSystemPaused,
			Message: "Recipe translation is temporarily unavailable. Please try again later.",
		})
		return
	}

	res, err := h.extractor.Translate(c.Request.Context(), req.Recipe, recipe.ParseLanguage(req.TargetLanguage))
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, TranslateResponse{Recipe: res.Recipe})
}

func quotaResponse(d *usage.Decision) apierrors.QuotaResponse {
	code := apierrors.CodeQuotaExceeded
	if d.Reason == usage.ReasonSystemLimit {
		code = apierrors.CodeSystemPaused
	}

	return apierrors.QuotaResponse{
		Error:          code,
		RequiresSignup: d.RequiresSignup,
		Upgrade:        d.Upgrade,
		Message:        d.Message,
	}
}

// maps pipeline failures onto the public error taxonomy
func respondPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrFetch):
		apierrors.FetchFailed(c, "", err)
	case errors.Is(err, pipeline.ErrNoRecipe):
		apierrors.FetchFailed(c, "we couldn't find a recipe in that source", err)
	case errors.Is(err, pipeline.ErrInvalidRecipe):
		apierrors.BadRequest(c, "recipe is missing required fields", nil)
	case errors.Is(err, pipeline.ErrNoStructuredJSON):
		apierrors.ExtractionFailed(c, err)
	case errors.Is(err, pipeline.ErrUpstream):
		apierrors.InternalError(c, "the recipe service is unavailable", err)
	default:
		apierrors.InternalError(c, "failed to process recipe", err)
	}
}
