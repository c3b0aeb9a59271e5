package savings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/pkg/clock"
)

// Repo stores savings entries. Implementations exist for the local SQLite
// store and for remote backends; FallbackRepo composes the two.
type Repo interface {
	Store(ctx context.Context, entry Entry) (Entry, error)
	// List returns all of the user's entries, newest first.
	List(ctx context.Context, userKey string) ([]Entry, error)
	Delete(ctx context.Context, userKey string, id string) error
}

// GoalRepo stores the savings goal. Goals live only in the local store.
type GoalRepo interface {
	// Goal returns the user's goal and whether one is set.
	Goal(ctx context.Context, userKey string) (decimal.Decimal, bool, error)
	SetGoal(ctx context.Context, userKey string, amount decimal.Decimal) error
}

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) Store(ctx context.Context, entry Entry) (Entry, error) {
	var fromMonth *string
	if entry.FromMonth != "" {
		s := entry.FromMonth.String()
		fromMonth = &s
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings (id, user_key, amount, description, date, is_auto_rollover, from_month, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserKey, entry.Amount.String(), entry.Description,
		entry.Date, entry.IsAutoRollover, fromMonth, entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		err = fmt.Errorf("could not store savings entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return entry, nil
}

func (r *SQLiteRepo) List(ctx context.Context, userKey string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_key, amount, description, date, is_auto_rollover, from_month, created_at
		 FROM savings WHERE user_key = ? ORDER BY date DESC, created_at DESC`,
		userKey,
	)
	if err != nil {
		return nil, fmt.Errorf("could not list savings entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var amount, createdAt string
		var fromMonth sql.NullString
		err := rows.Scan(&entry.ID, &entry.UserKey, &amount, &entry.Description,
			&entry.Date, &entry.IsAutoRollover, &fromMonth, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("could not read savings row: %w", err)
		}
		entry.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupted savings amount %q: %w", amount, err)
		}
		if fromMonth.Valid {
			entry.FromMonth = clock.MonthKey(fromMonth.String)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			entry.CreatedAt = t
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list savings entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, userKey string, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM savings WHERE user_key = ? AND id = ?`, userKey, id,
	)
	if err != nil {
		return fmt.Errorf("could not delete savings entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not delete savings entry: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type SQLiteGoalRepo struct {
	db *sql.DB
}

func NewSQLiteGoalRepo(db *sql.DB) *SQLiteGoalRepo {
	return &SQLiteGoalRepo{db: db}
}

func (r *SQLiteGoalRepo) Goal(ctx context.Context, userKey string) (decimal.Decimal, bool, error) {
	var stored string
	err := r.db.QueryRowContext(ctx,
		`SELECT amount FROM savings_goals WHERE user_key = ?`, userKey,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("could not read savings goal: %w", err)
	}

	amount, err := decimal.NewFromString(stored)
	if err != nil {
		log.Warnf("corrupted savings goal %q for user %s, treating as unset", stored, userKey)
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}

func (r *SQLiteGoalRepo) SetGoal(ctx context.Context, userKey string, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (user_key, amount) VALUES (?, ?)
		 ON CONFLICT (user_key) DO UPDATE SET amount = excluded.amount`,
		userKey, amount.String(),
	)
	if err != nil {
		err = fmt.Errorf("could not store savings goal: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
