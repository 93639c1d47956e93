// Package cache keeps finished recipes in Redis so repeat requests for the
// same source and language skip fetching and every billable model call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/mise/server/internal/logger"
	"codeberg.org/mise/server/internal/recipe"
)

// recipe:{source}:{language}:{sha256 of the normalized locator}
const keyRecipe = "recipe:%s:%s:%s"

type RecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// connects to Redis and verifies the connection
func NewRecipeCache(redisURL string, ttl time.Duration) (*RecipeCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis")

	return NewRecipeCacheFromClient(client, ttl), nil
}

// wraps an existing client
func NewRecipeCacheFromClient(client *redis.Client, ttl time.Duration) *RecipeCache {
	return &RecipeCache{client: client, ttl: ttl}
}

// closes the Redis connection
func (c *RecipeCache) Close() error {
	return c.client.Close()
}

// checks the connection (health endpoint)
func (c *RecipeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func key(source, locator, language string) string {
	sum := sha256.Sum256([]byte(locator))
	return fmt.Sprintf(keyRecipe, source, language, hex.EncodeToString(sum[:]))
}

// returns the cached recipe, or nil on a miss
func (c *RecipeCache) Get(ctx context.Context, source, locator, language string) (*recipe.Recipe, error) {
	data, err := c.client.Get(ctx, key(source, locator, language)).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read recipe from redis: %w", err)
	}

	var r recipe.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		// stale or foreign payload; treat as a miss
		return nil, nil
	}

	return &r, nil
}

// stores a finished recipe for the configured ttl
func (c *RecipeCache) Set(ctx context.Context, source, locator, language string, r recipe.Recipe) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := c.client.Set(ctx, key(source, locator, language), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write recipe to redis: %w", err)
	}

	return nil
}
