package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreatePending(ctx context.Context, p *Payment) error

	// GetByTransactionID is the idempotency probe: a hit means the
	// external event was already applied.
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	GetByBookingID(ctx context.Context, bookingID string) (*Payment, error)

	// CompleteAndConfirm flips the booking to confirmed and the payment to
	// completed in one transaction. The status guards make it safe under
	// duplicate delivery: a second run matches zero booking rows and
	// returns ErrStaleBooking.
	CompleteAndConfirm(ctx context.Context, bookingID, transactionID, method string, paidAt time.Time, noteLine string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) CreatePending(ctx context.Context, p *Payment) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.payments").
		Columns("booking_id", "amount", "method", "status").
		Values(p.BookingID, p.Amount, p.Method, StatusPending).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create payment query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt)
}

func (r *pgxRepository) GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	return r.getOne(ctx, squirrel.Eq{"transaction_id": transactionID})
}

func (r *pgxRepository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	return r.getOne(ctx, squirrel.Eq{"booking_id": bookingID})
}

func (r *pgxRepository) getOne(ctx context.Context, pred interface{}) (*Payment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "booking_id", "amount", "method", "status",
		"coalesce(transaction_id, '')", "paid_at", "created_at").
		From("public.payments").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment query failed: %w", err)
	}

	var p Payment
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Status, &p.TransactionID, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) CompleteAndConfirm(ctx context.Context, bookingID, transactionID, method string, paidAt time.Time, noteLine string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin confirm tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	bookingSQL, bookingArgs, err := psql.Update("public.bookings").
		Set("status", "confirmed").
		Set("deposit_paid_at", paidAt).
		Set("transaction_id", transactionID).
		Set("note", squirrel.Expr("CASE WHEN note = '' THEN ? ELSE note || E'\\n' || ? END", noteLine, noteLine)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": bookingID}).
		Where(squirrel.Eq{"status": "pending"}).
		Where(squirrel.Eq{"deposit_paid_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build confirm booking query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, bookingSQL, bookingArgs...)
	if err != nil {
		return fmt.Errorf("confirm booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrStaleBooking
	}

	paymentSQL, paymentArgs, err := psql.Update("public.payments").
		Set("status", StatusCompleted).
		Set("transaction_id", transactionID).
		Set("method", method).
		Set("paid_at", paidAt).
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"status": StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build complete payment query failed: %w", err)
	}

	ct, err = tx.Exec(ctx, paymentSQL, paymentArgs...)
	if err != nil {
		return fmt.Errorf("complete payment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// The pending payment row is missing (its creation is a
		// best-effort side effect of booking create). Record the
		// completed payment so the transaction id stays unique.
		insertSQL, insertArgs, err := psql.Insert("public.payments").
			Columns("booking_id", "amount", "method", "status", "transaction_id", "paid_at").
			Values(bookingID, 0, method, StatusCompleted, transactionID, paidAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert completed payment query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("insert completed payment failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit confirm tx failed: %w", err)
	}
	return nil
}
