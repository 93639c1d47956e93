package main

import (
	"context"
	"fmt"

	"codeberg.org/mise/server/internal/cache"
	"codeberg.org/mise/server/internal/config"
	"codeberg.org/mise/server/internal/extractor"
	"codeberg.org/mise/server/internal/fetcher"
	"codeberg.org/mise/server/internal/ledger"
	"codeberg.org/mise/server/internal/llm"
	"codeberg.org/mise/server/internal/logger"
	"codeberg.org/mise/server/internal/pipeline"
	"codeberg.org/mise/server/internal/ratelimit"
	"codeberg.org/mise/server/internal/usage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates the governance stores, the model client and the extraction pipeline.
// the durable counters must be ready before any traffic is served.
func InitializeServices(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, recipeCache *cache.RecipeCache) (*Services, error) {
	ledgerStore := ledger.NewPostgresStore(db)
	if err := ledgerStore.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize spending ledger: %w", err)
	}

	usageStore := usage.NewPostgresStore(db)
	if err := usageStore.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize usage store: %w", err)
	}

	spending := ledger.NewService(ledgerStore, ledger.Limits{
		Daily:   cfg.DailySpendLimit,
		Monthly: cfg.MonthlySpendLimit,
	})

	resolver := usage.NewResolver(usageStore, spending, usage.Limits{
		FreeMonthly:        cfg.FreeMonthlyRecipes,
		BasicMonthly:       cfg.BasicMonthlyRecipes,
		InitialFreeRecipes: cfg.InitialFreeRecipes,
	})

	generator, err := llm.NewTextGenerator(generatorConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}

	logger.Info("text generator ready",
		"provider", generator.Provider(),
		"model", generator.Model(),
	)

	p := pipeline.New(pipeline.Deps{
		Pages:     fetcher.NewWebpage(),
		Videos:    fetcher.NewVideo(),
		Extractor: extractor.New(generator),
		Ledger:    spending,
		Cache:     recipeCache,
	})

	return &Services{
		Ledger:   spending,
		Usage:    resolver,
		Pipeline: p,
		General:  ratelimit.New("general", cfg.GeneralRateLimit, cfg.RateLimitWindow),
		Strict:   ratelimit.New("extract", cfg.ExtractRateLimit, cfg.RateLimitWindow),
	}, nil
}

func generatorConfig(cfg *config.Config) llm.Config {
	gc := llm.Config{
		Provider: llm.Provider(cfg.ExtractorProvider),
		APIKey:   cfg.AnthropicKey,
		Model:    cfg.ExtractorModel,
	}

	if gc.Provider == llm.ProviderOpenAI {
		gc.APIKey = cfg.OpenAIKey
	}

	return gc
}
