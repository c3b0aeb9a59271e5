package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/pkg/clock"
)

// Repo stores monthly budgets. Budgets live only in the local store; they
// are never synced to a remote backend.
type Repo interface {
	// Get returns the budget for the month, or decimal.Zero when none is
	// set. A missing per-month value falls back to the legacy single-scalar
	// budget from before budgets were kept per month.
	Get(ctx context.Context, userKey string, month clock.MonthKey) (decimal.Decimal, error)
	Set(ctx context.Context, userKey string, month clock.MonthKey, amount decimal.Decimal) error
}

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) Get(ctx context.Context, userKey string, month clock.MonthKey) (decimal.Decimal, error) {
	var stored string
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM budgets WHERE user_key = ? AND month = ?`,
		userKey, string(month),
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return r.legacyAmount(ctx, userKey)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not read budget: %w", err)
	}

	amount, err := decimal.NewFromString(stored)
	if err != nil {
		// Corrupted stored value: treat as absent rather than failing the
		// rollover check.
		log.Warnf("corrupted budget amount %q for user %s month %s, treating as unset", stored, userKey, month)
		return decimal.Zero, nil
	}
	return amount, nil
}

func (r *SQLiteRepo) Set(ctx context.Context, userKey string, month clock.MonthKey, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_key, month, amount) VALUES (?, ?, ?)
		 ON CONFLICT (user_key, month) DO UPDATE SET amount = excluded.amount`,
		userKey, string(month), amount.String(),
	)
	if err != nil {
		err = fmt.Errorf("could not store budget: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

// legacyAmount reads the pre-per-month scalar budget. It applies to any
// month asked for while no per-month value exists, matching how the old
// data was interpreted at migration time.
func (r *SQLiteRepo) legacyAmount(ctx context.Context, userKey string) (decimal.Decimal, error) {
	var stored string
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM legacy_budgets WHERE user_key = ?`, userKey,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not read legacy budget: %w", err)
	}

	amount, err := decimal.NewFromString(stored)
	if err != nil {
		log.Warnf("corrupted legacy budget amount %q for user %s, treating as unset", stored, userKey)
		return decimal.Zero, nil
	}
	return amount, nil
}
