package rollover

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bachat/bachat/pkg/clock"
)

// MarkerRepo stores the rollover bookkeeping: the last-check timestamp
// that short-circuits repeated checks within a month, and the per-month
// processed markers that make the rollover at-most-once. Markers live
// only in the local store.
type MarkerRepo interface {
	// LastCheck returns the stored last-check timestamp, or the empty
	// string when no check has ever run.
	LastCheck(ctx context.Context, userKey string) (string, error)
	SetLastCheck(ctx context.Context, userKey string, checkedAt time.Time) error
	// ClaimProcessed marks the month processed if no marker exists yet,
	// stamping it with the caller's notion of now. It reports whether
	// this call claimed the marker; a false return means another check
	// got there first.
	ClaimProcessed(ctx context.Context, userKey string, month clock.MonthKey, processedAt time.Time) (bool, error)
	IsProcessed(ctx context.Context, userKey string, month clock.MonthKey) (bool, error)
	// Reset clears all bookkeeping for the user so the next check runs
	// from a clean slate. Only the dev tooling calls this.
	Reset(ctx context.Context, userKey string) error
}

type SQLiteMarkerRepo struct {
	db *sql.DB
}

func NewSQLiteMarkerRepo(db *sql.DB) *SQLiteMarkerRepo {
	return &SQLiteMarkerRepo{db: db}
}

func (r *SQLiteMarkerRepo) LastCheck(ctx context.Context, userKey string) (string, error) {
	var lastCheck string
	err := r.db.QueryRowContext(ctx,
		`SELECT last_check FROM rollover_checks WHERE user_key = ?`, userKey,
	).Scan(&lastCheck)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read last rollover check: %w", err)
	}
	return lastCheck, nil
}

func (r *SQLiteMarkerRepo) SetLastCheck(ctx context.Context, userKey string, checkedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rollover_checks (user_key, last_check) VALUES (?, ?)
		 ON CONFLICT (user_key) DO UPDATE SET last_check = excluded.last_check`,
		userKey, checkedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("could not store last rollover check: %w", err)
	}
	return nil
}

func (r *SQLiteMarkerRepo) ClaimProcessed(ctx context.Context, userKey string, month clock.MonthKey, processedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO rollover_processed (user_key, month, processed_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_key, month) DO NOTHING`,
		userKey, string(month), processedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("could not claim rollover marker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not claim rollover marker: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteMarkerRepo) IsProcessed(ctx context.Context, userKey string, month clock.MonthKey) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM rollover_processed WHERE user_key = ? AND month = ?`,
		userKey, string(month),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not read rollover marker: %w", err)
	}
	return true, nil
}

func (r *SQLiteMarkerRepo) Reset(ctx context.Context, userKey string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM rollover_checks WHERE user_key = ?`, userKey,
	); err != nil {
		return fmt.Errorf("could not reset rollover checks: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM rollover_processed WHERE user_key = ?`, userKey,
	); err != nil {
		return fmt.Errorf("could not reset rollover markers: %w", err)
	}
	return nil
}
