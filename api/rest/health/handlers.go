package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "mise"
	serviceVersion = "1.0.0"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// returns the server health status, probing the database and cache when given
func Handler(db, cache Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: serviceVersion,
		}

		status := http.StatusOK

		if db != nil {
			resp.Database = probe(ctx, db)
		}

		if cache != nil {
			resp.Cache = probe(ctx, cache)
		}

		if resp.Database == "down" || resp.Cache == "down" {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, resp)
	}
}

func probe(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
