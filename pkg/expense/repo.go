package expense

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/pkg/clock"
)

// Repo stores expenses. Implementations exist for the local SQLite store
// and for remote backends; FallbackRepo composes the two.
type Repo interface {
	Store(ctx context.Context, expense Expense) (Expense, error)
	// ListForMonth returns the user's expenses within the month, newest
	// first. An empty category matches all categories.
	ListForMonth(ctx context.Context, userKey string, month clock.MonthKey, category string) ([]Expense, error)
	Delete(ctx context.Context, userKey string, id string) error
}

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) Store(ctx context.Context, expense Expense) (Expense, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_key, amount, category, description, date, recurring, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserKey, expense.Amount.String(), expense.Category,
		expense.Description, expense.Date, expense.Recurring, expense.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		err = fmt.Errorf("could not store expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	return expense, nil
}

func (r *SQLiteRepo) ListForMonth(ctx context.Context, userKey string, month clock.MonthKey, category string) ([]Expense, error) {
	query := `SELECT id, user_key, amount, category, description, date, recurring, created_at
		 FROM expenses WHERE user_key = ? AND date LIKE ?`
	args := []any{userKey, string(month) + "%"}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, userKey string, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_key = ? AND id = ?`, userKey, id,
	)
	if err != nil {
		return fmt.Errorf("could not delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not delete expense: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanExpense(rows *sql.Rows) (Expense, error) {
	var expense Expense
	var amount, createdAt string
	err := rows.Scan(&expense.ID, &expense.UserKey, &amount, &expense.Category,
		&expense.Description, &expense.Date, &expense.Recurring, &createdAt)
	if err != nil {
		return Expense{}, fmt.Errorf("could not read expense row: %w", err)
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return Expense{}, fmt.Errorf("corrupted expense amount %q: %w", amount, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		expense.CreatedAt = t
	}
	return expense, nil
}
