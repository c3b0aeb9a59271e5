package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/expense"
)

// ExpenseRepo implements expense.Repo against the remote PostgreSQL store.
type ExpenseRepo struct {
	store *Store
}

func NewExpenseRepo(store *Store) *ExpenseRepo {
	return &ExpenseRepo{store: store}
}

func (r *ExpenseRepo) Store(ctx context.Context, e expense.Expense) (expense.Expense, error) {
	_, err := r.store.pool.Exec(ctx,
		`INSERT INTO expenses (id, user_key, amount, category, description, date, recurring, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserKey, e.Amount.String(), e.Category, e.Description, e.Date, e.Recurring, e.CreatedAt,
	)
	if err != nil {
		return expense.Expense{}, fmt.Errorf("remote expense store failed: %w", err)
	}
	return e, nil
}

func (r *ExpenseRepo) ListForMonth(ctx context.Context, userKey string, month clock.MonthKey, category string) ([]expense.Expense, error) {
	query := `SELECT id, user_key, amount::text, category, description, date, recurring, created_at
		 FROM expenses WHERE user_key = $1 AND date LIKE $2`
	args := []any{userKey, string(month) + "%"}
	if category != "" {
		query += ` AND category = $3`
		args = append(args, category)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("remote expense list failed: %w", err)
	}
	defer rows.Close()

	expenses := make([]expense.Expense, 0)
	for rows.Next() {
		var e expense.Expense
		var amount string
		err := rows.Scan(&e.ID, &e.UserKey, &amount, &e.Category, &e.Description,
			&e.Date, &e.Recurring, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("remote expense list failed: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupted remote expense amount %q: %w", amount, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("remote expense list failed: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepo) Delete(ctx context.Context, userKey string, id string) error {
	tag, err := r.store.pool.Exec(ctx,
		`DELETE FROM expenses WHERE user_key = $1 AND id = $2`, userKey, id,
	)
	if err != nil {
		return fmt.Errorf("remote expense delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrNotFound
	}
	return nil
}
