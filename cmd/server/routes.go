package main

import (
	"time"

	"codeberg.org/mise/server/api/rest/admin"
	"codeberg.org/mise/server/api/rest/health"
	"codeberg.org/mise/server/api/rest/recipes"
	"codeberg.org/mise/server/api/rest/usage"
	"codeberg.org/mise/server/internal/auth"
	"codeberg.org/mise/server/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sets up all API routes and middleware. rate limits run before any quota
// or ledger work; the strict limiter covers only the billable endpoints.
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(corsMiddleware(server.config.CORSOrigins))
	router.Use(logger.RequestLogger())
	router.Use(auth.OptionalAuthMiddleware())
	router.Use(server.services.General.Middleware())

	router.GET("/health", health.Handler(server.db, server.cache))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers := recipes.NewHandlers(server.services.Usage, server.services.Pipeline, server.services.Ledger)
	strict := server.services.Strict.Middleware()

	recipes.RegisterRoutes(router, handlers, strict)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		recipes.RegisterRoutes(v1, handlers, strict)
		usage.RegisterRoutes(v1, server.services.Usage)
		admin.RegisterRoutes(v1, server.services.Ledger)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}

	return cors.New(cfg)
}
