package usage

import (
	"context"
	"net/http"

	"codeberg.org/mise/server/internal/auth"
	apierrors "codeberg.org/mise/server/internal/errors"
	"codeberg.org/mise/server/internal/usage"
	"github.com/gin-gonic/gin"
)

type Summarizer interface {
	Summary(ctx context.Context, caller usage.Caller) (*usage.Decision, error)
}

// GetUsage godoc
// @Summary Get the caller's recipe allowance
// @Description Anonymous callers pass their device fingerprint as a query parameter.
// @Tags usage
// @Produce json
// @Param fingerprint query string false "Device fingerprint"
// @Success 200 {object} Response
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage [get]
func GetUsage(resolver Summarizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		d, err := resolver.Summary(c.Request.Context(), usage.Caller{
			UserID:      userID,
			Tier:        usage.ParseTier(auth.GetTier(c)),
			Fingerprint: c.Query("fingerprint"),
			IP:          c.ClientIP(),
		})
		if err != nil {
			apierrors.InternalError(c, "failed to load usage", err)
			return
		}

		tier := d.Tier
		if tier == "" {
			tier = usage.TierNone
		}

		c.JSON(http.StatusOK, Response{
			Allowed:        d.Allowed,
			Tier:           string(tier),
			Used:           d.Used,
			Limit:          d.Limit,
			Remaining:      d.Remaining,
			Reason:         string(d.Reason),
			RequiresSignup: d.RequiresSignup,
			Upgrade:        d.Upgrade,
		})
	}
}
