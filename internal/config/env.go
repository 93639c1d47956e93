package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:       getOr("ENVIRONMENT", "development"),
		Port:              getOr("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ExtractorProvider: strings.ToLower(getOr("EXTRACTOR_PROVIDER", ProviderAnthropic)),
		ExtractorModel:    os.Getenv("EXTRACTOR_MODEL"),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
	}

	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
		"JWT_SECRET":   cfg.JWTSecret,
	}

	for _, name := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET"} {
		if required[name] == "" {
			return nil, fmt.Errorf("%s environment variable is required", name)
		}
	}

	switch cfg.ExtractorProvider {
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required when EXTRACTOR_PROVIDER=anthropic")
		}
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required when EXTRACTOR_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("EXTRACTOR_PROVIDER must be %q or %q, got %q", ProviderAnthropic, ProviderOpenAI, cfg.ExtractorProvider)
	}

	var err error

	if cfg.DailySpendLimit, err = getFloat("DAILY_SPEND_LIMIT", 10); err != nil {
		return nil, err
	}

	if cfg.MonthlySpendLimit, err = getFloat("MONTHLY_SPEND_LIMIT", 100); err != nil {
		return nil, err
	}

	if cfg.FreeMonthlyRecipes, err = getInt("FREE_MONTHLY_RECIPES", 3); err != nil {
		return nil, err
	}

	if cfg.BasicMonthlyRecipes, err = getInt("BASIC_MONTHLY_RECIPES", 30); err != nil {
		return nil, err
	}

	if cfg.InitialFreeRecipes, err = getInt("INITIAL_FREE_RECIPES", 3); err != nil {
		return nil, err
	}

	general, err := getInt("GENERAL_RATE_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	cfg.GeneralRateLimit = int64(general)

	extract, err := getInt("EXTRACT_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	cfg.ExtractRateLimit = int64(extract)

	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	if cfg.RecipeCacheTTL, err = getDuration("RECIPE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 60s: %w", key, err)
	}

	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}

	return v, nil
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
