package config

import "time"

type Config struct {
	Environment string
	Port        string

	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	CORSOrigins []string

	AnthropicKey      string
	OpenAIKey         string
	ExtractorProvider string
	ExtractorModel    string

	DailySpendLimit   float64
	MonthlySpendLimit float64

	FreeMonthlyRecipes  int
	BasicMonthlyRecipes int
	InitialFreeRecipes  int

	GeneralRateLimit int64
	ExtractRateLimit int64
	RateLimitWindow  time.Duration

	RecipeCacheTTL time.Duration
}

// reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

type TokenFlags struct {
	UserID  string
	Email   string
	Tier    string
	IsAdmin bool
}
