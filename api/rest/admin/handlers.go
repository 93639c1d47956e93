package admin

import (
	"context"
	"net/http"

	"codeberg.org/mise/server/internal/errors"
	"codeberg.org/mise/server/internal/ledger"
	"github.com/gin-gonic/gin"
)

type SpendingReader interface {
	Status(ctx context.Context) (*ledger.Status, error)
}

// GetSpending godoc
// @Summary Get the AI spending ledger
// @Description Admin-only view of daily and monthly spend against the breaker ceilings
// @Tags admin
// @Produce json
// @Success 200 {object} SpendingResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/admin/spending [get]
// @Security BearerAuth
func GetSpending(spending SpendingReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := spending.Status(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to load spending ledger", err)
			return
		}

		c.JSON(http.StatusOK, SpendingResponse{
			DailyDate:        status.DailyDate,
			DailyAmount:      status.DailyAmount,
			DailyLimit:       status.Limits.Daily,
			DailyRemaining:   status.DailyRemaining,
			DailyResetAt:     status.DailyResetAt,
			MonthlyMonth:     status.MonthlyMonth,
			MonthlyAmount:    status.MonthlyAmount,
			MonthlyLimit:     status.Limits.Monthly,
			MonthlyRemaining: status.MonthlyRemaining,
			MonthlyResetAt:   status.MonthlyResetAt,
			Paused:           status.Paused,
			PauseReason:      string(status.PauseReason),
		})
	}
}
