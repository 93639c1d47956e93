package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/mise/server/internal/cache"
	"codeberg.org/mise/server/internal/config"
	"codeberg.org/mise/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// counters are tiny rows hit on every extraction; a small pool suffices
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode does not support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	recipeCache, err := cache.NewRecipeCache(cfg.RedisURL, cfg.RecipeCacheTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize recipe cache: %w", err)
	}

	services, err := InitializeServices(ctx, cfg, db, recipeCache)
	if err != nil {
		recipeCache.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("cost governance initialized",
		"daily_spend_limit", cfg.DailySpendLimit,
		"monthly_spend_limit", cfg.MonthlySpendLimit,
		"free_monthly", cfg.FreeMonthlyRecipes,
		"basic_monthly", cfg.BasicMonthlyRecipes,
		"initial_free", cfg.InitialFreeRecipes,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		db:       db,
		config:   cfg,
		cache:    recipeCache,
		services: services,
		router:   router,
	}

	RegisterRoutes(router, server)

	return server, nil
}
