package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"codeberg.org/mise/server/internal/period"
)

// the part of *pgxpool.Pool the store uses
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// implements Store on a single PostgreSQL row
type PostgresStore struct {
	db Querier
}

// creates a new PostgreSQL ledger store
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the ledger table and its singleton row if missing
func (s *PostgresStore) Initialize(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createLedgerTableSQL); err != nil {
		return fmt.Errorf("failed to initialize spending ledger: %w", err)
	}

	return nil
}

// returns the ledger after applying pending resets
func (s *PostgresStore) Load(ctx context.Context, now time.Time, limits Limits) (*Ledger, error) {
	return s.Add(ctx, 0, now, limits)
}

// adds amount to both accumulators after applying pending resets
func (s *PostgresStore) Add(ctx context.Context, amount float64, now time.Time, limits Limits) (*Ledger, error) {
	var l Ledger

	err := s.db.QueryRow(ctx, addSpendSQL,
		amount,
		period.DayKey(now),
		period.MonthKey(now),
		limits.Daily,
		limits.Monthly,
	).Scan(&l.DailyDate, &l.DailyAmount, &l.MonthlyMonth, &l.MonthlyAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to update spending ledger: %w", err)
	}

	Evaluate(&l, limits)
	return &l, nil
}
