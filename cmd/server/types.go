package main

import (
	"codeberg.org/mise/server/internal/cache"
	"codeberg.org/mise/server/internal/config"
	"codeberg.org/mise/server/internal/ledger"
	"codeberg.org/mise/server/internal/pipeline"
	"codeberg.org/mise/server/internal/ratelimit"
	"codeberg.org/mise/server/internal/usage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// holds all dependencies and state for the API server
type Server struct {
	db       *pgxpool.Pool
	config   *config.Config
	cache    *cache.RecipeCache
	services *Services
	router   *gin.Engine
}

// holds the cost governance and extraction services
type Services struct {
	Ledger   *ledger.Service
	Usage    *usage.Resolver
	Pipeline *pipeline.Pipeline
	General  *ratelimit.Limiter
	Strict   *ratelimit.Limiter
}
