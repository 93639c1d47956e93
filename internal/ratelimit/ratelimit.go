// Package ratelimit guards routes with fixed-window request counters keyed
// by the authenticated user id, falling back to the client IP. Windows live
// in process memory, so limits are enforced per instance.
package ratelimit

import (
	"context"
	"time"

	"codeberg.org/mise/server/internal/auth"
	apierrors "codeberg.org/mise/server/internal/errors"
	"codeberg.org/mise/server/internal/logger"
	"codeberg.org/mise/server/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// expired windows are swept on this interval
const cleanupInterval = 5 * time.Minute

type Limiter struct {
	name     string
	instance *limiter.Limiter
}

// creates a named limiter allowing limit requests per window for each key
func New(name string, limit int64, window time.Duration) *Limiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "mise:" + name,
		CleanUpInterval: cleanupInterval,
	})

	return &Limiter{
		name: name,
		instance: limiter.New(store, limiter.Rate{
			Period: window,
			Limit:  limit,
		}),
	}
}

// returns the name used in logs and metrics
func (l *Limiter) Name() string {
	return l.name
}

// counts one request against key and reports the window state
func (l *Limiter) Allow(ctx context.Context, key string) (limiter.Context, error) {
	return l.instance.Get(ctx, key)
}

// identifies the caller: user id when authenticated, otherwise client IP
func Key(c *gin.Context) string {
	if userID, ok := auth.GetUserID(c); ok {
		return "user:" + userID
	}

	return "ip:" + c.ClientIP()
}

// gin middleware rejecting requests over the limit with 429.
// it must run after OptionalAuthMiddleware for user keys to apply.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return mgin.NewMiddleware(l.instance,
		mgin.WithKeyGetter(Key),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			metrics.RateLimited.WithLabelValues(l.name).Inc()
			logger.FromContext(c.Request.Context()).Debug("rate limited",
				"limiter", l.name,
				"client_ip", c.ClientIP(),
			)
			apierrors.TooManyRequests(c, "too many requests, please slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			apierrors.InternalError(c, "rate limiter unavailable", err)
			c.Abort()
		}),
	)
}
