package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetPendingByRefCode finds a booking by reference code that is still
	// pending and unpaid. Used by the payment reconciler.
	GetPendingByRefCode(ctx context.Context, refCode string) (*Booking, error)

	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, b *Booking) error

	// HasOverlap checks for a conflicting booking on the resource in the
	// given time range. Occupying rows are confirmed/in_progress/completed
	// of any age, plus pending rows created after pendingCutoff (the hold
	// window). Older pending rows are treated as abandoned.
	HasOverlap(ctx context.Context, resourceID string, start, end time.Time, pendingCutoff time.Time, excludeID string) (bool, error)

	// CountOnDate counts bookings created for a date, for ref code sequencing.
	CountOnDate(ctx context.Context, date time.Time) (int, error)

	// ListExpiredHolds returns pending, unpaid bookings whose payment flow
	// started before cutoff. Pending rows with no payment-start marker are
	// deliberately excluded.
	ListExpiredHolds(ctx context.Context, cutoff time.Time) ([]*Booking, error)

	ListInProgress(ctx context.Context) ([]*Booking, error)

	// ListConfirmedStartingBetween returns confirmed bookings whose
	// scheduled start falls inside [from, to).
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*Booking, error)
}

var bookingColumns = []string{
	"id", "ref_code", "resource_id", "date", "start_time", "end_time",
	"party_size", "status", "estimated_amount", "deposit_amount", "actual_amount",
	"actual_start_at", "actual_end_at", "deposit_paid_at", "payment_started_at",
	"transaction_id", "reward_issued", "reward_issued_at",
	"customer_id", "contact_name", "contact_phone", "note",
	"created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("ref_code", "resource_id", "date", "start_time", "end_time",
			"party_size", "status", "estimated_amount", "deposit_amount",
			"customer_id", "contact_name", "contact_phone", "note").
		Values(b.RefCode, b.ResourceID, b.Date, b.StartTime, b.EndTime,
			b.PartySize, b.Status, b.EstimatedAmount, b.DepositAmount,
			nullIfEmpty(b.CustomerID), b.ContactName, b.ContactPhone, b.Note).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isRefCodeConflict(err) {
			return ErrRefCodeTaken
		}
		if isConstraintConflict(err) {
			return ErrTimeConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetPendingByRefCode(ctx context.Context, refCode string) (*Booking, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"ref_code": refCode},
		squirrel.Eq{"status": StatusPending},
		squirrel.Eq{"deposit_paid_at": nil},
	})
}

func (r *pgxRepository) getOne(ctx context.Context, pred interface{}) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := append(append([]string{}, bookingColumns...), "count(*) OVER() as total_count")
	query := psql.Select(cols...).
		From("public.bookings").
		OrderBy("start_time DESC")

	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"resource_id": filter.ResourceID})
	}
	if filter.CustomerID != "" {
		query = query.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Date != nil {
		query = query.Where(squirrel.Eq{"date": filter.Date.UTC().Truncate(24 * time.Hour)})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, err := scanBookingWithTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("estimated_amount", b.EstimatedAmount).
		Set("deposit_amount", b.DepositAmount).
		Set("actual_amount", b.ActualAmount).
		Set("actual_start_at", b.ActualStartAt).
		Set("actual_end_at", b.ActualEndAt).
		Set("deposit_paid_at", b.DepositPaidAt).
		Set("payment_started_at", b.PaymentStartedAt).
		Set("transaction_id", b.TransactionID).
		Set("reward_issued", b.RewardIssued).
		Set("reward_issued_at", b.RewardIssuedAt).
		Set("note", b.Note).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, resourceID string, start, end time.Time, pendingCutoff time.Time, excludeID string) (bool, error) {
	// Occupied means:
	//   status in (confirmed, in_progress, completed), any age
	//   OR status = pending AND created_at > cutoff (inside the hold window)
	// Conflict predicate: start < existing_end AND end > existing_start.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		Where(squirrel.Or{
			squirrel.Eq{"status": OccupyingStatuses},
			squirrel.And{
				squirrel.Eq{"status": StatusPending},
				squirrel.Gt{"created_at": pendingCutoff},
			},
		})

	if excludeID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	query := "SELECT EXISTS (" + sql + ")"

	var exists bool
	err = r.pool.QueryRow(ctx, query, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) CountOnDate(ctx context.Context, date time.Time) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.bookings").
		Where(squirrel.Eq{"date": date}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) ListExpiredHolds(ctx context.Context, cutoff time.Time) ([]*Booking, error) {
	return r.listWhere(ctx, squirrel.And{
		squirrel.Eq{"status": StatusPending},
		squirrel.Eq{"deposit_paid_at": nil},
		squirrel.NotEq{"payment_started_at": nil},
		squirrel.Lt{"payment_started_at": cutoff},
	})
}

func (r *pgxRepository) ListInProgress(ctx context.Context) ([]*Booking, error) {
	return r.listWhere(ctx, squirrel.Eq{"status": StatusInProgress})
}

func (r *pgxRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	return r.listWhere(ctx, squirrel.And{
		squirrel.Eq{"status": StatusConfirmed},
		squirrel.GtOrEq{"start_time": from},
		squirrel.Lt{"start_time": to},
	})
}

func (r *pgxRepository) listWhere(ctx context.Context, pred interface{}) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(pred).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var customerID *string
	err := row.Scan(
		&b.ID, &b.RefCode, &b.ResourceID, &b.Date, &b.StartTime, &b.EndTime,
		&b.PartySize, &b.Status, &b.EstimatedAmount, &b.DepositAmount, &b.ActualAmount,
		&b.ActualStartAt, &b.ActualEndAt, &b.DepositPaidAt, &b.PaymentStartedAt,
		&b.TransactionID, &b.RewardIssued, &b.RewardIssuedAt,
		&customerID, &b.ContactName, &b.ContactPhone, &b.Note,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if customerID != nil {
		b.CustomerID = *customerID
	}
	return &b, nil
}

func scanBookingWithTotal(row rowScanner, total *int) (*Booking, error) {
	var b Booking
	var customerID *string
	err := row.Scan(
		&b.ID, &b.RefCode, &b.ResourceID, &b.Date, &b.StartTime, &b.EndTime,
		&b.PartySize, &b.Status, &b.EstimatedAmount, &b.DepositAmount, &b.ActualAmount,
		&b.ActualStartAt, &b.ActualEndAt, &b.DepositPaidAt, &b.PaymentStartedAt,
		&b.TransactionID, &b.RewardIssued, &b.RewardIssuedAt,
		&customerID, &b.ContactName, &b.ContactPhone, &b.Note,
		&b.CreatedAt, &b.UpdatedAt, total,
	)
	if err != nil {
		return nil, err
	}
	if customerID != nil {
		b.CustomerID = *customerID
	}
	return &b, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// isRefCodeConflict detects a unique violation on the ref_code index:
// a concurrent same-day create committed the same sequence number. This
// is retryable and must not be reported as a slot conflict.
func isRefCodeConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.UniqueViolation && strings.Contains(pgErr.ConstraintName, "ref_code")
}

// isConstraintConflict detects the exclusion/unique violation raised by the
// bookings_no_overlap constraint, the storage-level backstop against
// double-booking.
func isConstraintConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.ExclusionViolation || pgErr.Code == pgerrcode.UniqueViolation
}
