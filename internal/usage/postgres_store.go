package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// the part of *pgxpool.Pool the store uses
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// implements Store using PostgreSQL row-level atomic upserts
type PostgresStore struct {
	db Querier
}

// creates a new PostgreSQL usage store
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the usage tables if they don't exist
func (s *PostgresStore) Initialize(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createUsageTablesSQL); err != nil {
		return fmt.Errorf("failed to initialize usage tables: %w", err)
	}

	return nil
}

// returns the stored row, or nil if the user has never extracted
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*UserUsage, error) {
	var u UserUsage
	var tier string

	err := s.db.QueryRow(ctx, queryGetUserUsage, userID).Scan(
		&u.UserID,
		&tier,
		&u.RecipesUsedThisMonth,
		&u.MonthStarted,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user usage: %w", err)
	}

	u.SubscriptionTier = ParseTier(tier)
	return &u, nil
}

// returns the stored row, or nil for an unseen fingerprint
func (s *PostgresStore) GetAnonymous(ctx context.Context, fingerprint string) (*AnonymousUsage, error) {
	var a AnonymousUsage

	err := s.db.QueryRow(ctx, queryGetAnonymousUsage, fingerprint).Scan(
		&a.Fingerprint,
		&a.RecipesUsedLifetime,
		&a.LastSeen,
		&a.IP,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get anonymous usage: %w", err)
	}

	return &a, nil
}

// atomically increments the monthly counter unless it is at limit
func (s *PostgresStore) IncrementUser(ctx context.Context, userID string, tier Tier, month string, limit int) (*UserUsage, error) {
	var u UserUsage
	var storedTier string

	err := s.db.QueryRow(ctx, queryIncrementUserUsage, userID, string(tier), month, limit).Scan(
		&u.UserID,
		&storedTier,
		&u.RecipesUsedThisMonth,
		&u.MonthStarted,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLimitReached
	}

	if err != nil {
		return nil, fmt.Errorf("failed to increment user usage: %w", err)
	}

	u.SubscriptionTier = ParseTier(storedTier)
	return &u, nil
}

// atomically increments the lifetime counter unless it is at limit
func (s *PostgresStore) IncrementAnonymous(ctx context.Context, fingerprint, ip string, limit int) (*AnonymousUsage, error) {
	var a AnonymousUsage

	err := s.db.QueryRow(ctx, queryIncrementAnonymousUsage, fingerprint, ip, limit).Scan(
		&a.Fingerprint,
		&a.RecipesUsedLifetime,
		&a.LastSeen,
		&a.IP,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLimitReached
	}

	if err != nil {
		return nil, fmt.Errorf("failed to increment anonymous usage: %w", err)
	}

	return &a, nil
}
