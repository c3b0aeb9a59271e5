package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/savings"
)

// SavingsRepo implements savings.Repo against the remote PostgreSQL store.
type SavingsRepo struct {
	store *Store
}

func NewSavingsRepo(store *Store) *SavingsRepo {
	return &SavingsRepo{store: store}
}

func (r *SavingsRepo) Store(ctx context.Context, entry savings.Entry) (savings.Entry, error) {
	var fromMonth *string
	if entry.FromMonth != "" {
		s := entry.FromMonth.String()
		fromMonth = &s
	}
	_, err := r.store.pool.Exec(ctx,
		`INSERT INTO savings (id, user_key, amount, description, date, is_auto_rollover, from_month, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserKey, entry.Amount.String(), entry.Description,
		entry.Date, entry.IsAutoRollover, fromMonth, entry.CreatedAt,
	)
	if err != nil {
		return savings.Entry{}, fmt.Errorf("remote savings store failed: %w", err)
	}
	return entry, nil
}

func (r *SavingsRepo) List(ctx context.Context, userKey string) ([]savings.Entry, error) {
	rows, err := r.store.pool.Query(ctx,
		`SELECT id, user_key, amount::text, description, date, is_auto_rollover, from_month, created_at
		 FROM savings WHERE user_key = $1 ORDER BY date DESC, created_at DESC`,
		userKey,
	)
	if err != nil {
		return nil, fmt.Errorf("remote savings list failed: %w", err)
	}
	defer rows.Close()

	entries := make([]savings.Entry, 0)
	for rows.Next() {
		var entry savings.Entry
		var amount string
		var fromMonth *string
		err := rows.Scan(&entry.ID, &entry.UserKey, &amount, &entry.Description,
			&entry.Date, &entry.IsAutoRollover, &fromMonth, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("remote savings list failed: %w", err)
		}
		entry.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupted remote savings amount %q: %w", amount, err)
		}
		if fromMonth != nil {
			entry.FromMonth = clock.MonthKey(*fromMonth)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("remote savings list failed: %w", err)
	}
	return entries, nil
}

func (r *SavingsRepo) Delete(ctx context.Context, userKey string, id string) error {
	tag, err := r.store.pool.Exec(ctx,
		`DELETE FROM savings WHERE user_key = $1 AND id = $2`, userKey, id,
	)
	if err != nil {
		return fmt.Errorf("remote savings delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return savings.ErrNotFound
	}
	return nil
}
