package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertKind tags a raised alert for de-duplication.
type AlertKind string

const (
	AlertOvertime   AlertKind = "overtime"
	AlertEndingSoon AlertKind = "ending_soon"
	AlertReminder   AlertKind = "reminder"
)

// AlertStore persists raised alerts so repeat checks can suppress
// duplicates: overtime uses a cool-down lookback, ending-soon and
// reminders fire at most once per booking.
type AlertStore interface {
	Record(ctx context.Context, bookingID string, kind AlertKind) error
	ExistsSince(ctx context.Context, bookingID string, kind AlertKind, since time.Time) (bool, error)
}

type pgxAlertStore struct {
	pool *pgxpool.Pool
}

func NewPgxAlertStore(pool *pgxpool.Pool) AlertStore {
	return &pgxAlertStore{pool: pool}
}

func (s *pgxAlertStore) Record(ctx context.Context, bookingID string, kind AlertKind) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.alerts").
		Columns("booking_id", "kind").
		Values(bookingID, kind).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record alert query failed: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("record alert failed: %w", err)
	}
	return nil
}

func (s *pgxAlertStore) ExistsSince(ctx context.Context, bookingID string, kind AlertKind, since time.Time) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.alerts").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"kind": kind})

	if !since.IsZero() {
		subQuery = subQuery.Where(squirrel.Gt{"created_at": since})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check alert query failed: %w", err)
	}

	var exists bool
	err = s.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check alert failed: %w", err)
	}
	return exists, nil
}
