package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/booking"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/metrics"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/notify"
)

// Reconciler matches external payment-confirmation events to pending
// bookings and drives them to confirmed. Both entry points (push webhook
// and pull sync) normalize into Reconcile, which is idempotent on the
// external transaction id: the upstream provider delivers at least once.
type Reconciler struct {
	repo     Repository
	bookings booking.Service
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	pattern  *regexp.Regexp

	now func() time.Time
}

func NewReconciler(
	repo Repository,
	bookings booking.Service,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
	refCodePrefix string,
) *Reconciler {
	return &Reconciler{
		repo:     repo,
		bookings: bookings,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "reconciler").Logger(),
		pattern:  booking.RefCodePattern(refCodePrefix),
		now:      time.Now,
	}
}

// Reconcile applies one payment event. Business non-matches return an
// outcome, never an error: the provider must only see a failure for
// transport-level problems, or it will retry a non-retryable situation.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) (Outcome, error) {
	// Idempotency: an already-recorded transaction id means this event
	// was delivered before. Ack without touching anything.
	if _, err := r.repo.GetByTransactionID(ctx, ev.TransactionID); err == nil {
		r.metrics.WebhookEvents.WithLabelValues(string(OutcomeDuplicate)).Inc()
		r.logger.Info().Str("transaction_id", ev.TransactionID).Msg("duplicate payment event")
		return OutcomeDuplicate, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("idempotency check failed: %w", err)
	}

	refCode := booking.ExtractRefCode(r.pattern, ev.Description)
	if refCode == "" {
		r.metrics.WebhookEvents.WithLabelValues(string(OutcomeNoMatch)).Inc()
		r.logger.Info().Str("transaction_id", ev.TransactionID).
			Str("description", ev.Description).Msg("no reference code in payment description")
		return OutcomeNoMatch, nil
	}

	b, err := r.bookings.GetPendingByRefCode(ctx, refCode)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			r.metrics.WebhookEvents.WithLabelValues(string(OutcomeNoMatch)).Inc()
			r.logger.Info().Str("transaction_id", ev.TransactionID).
				Str("ref_code", refCode).Msg("no pending booking for reference code")
			return OutcomeNoMatch, nil
		}
		return "", fmt.Errorf("booking lookup failed: %w", err)
	}

	// Underpayment is flagged to operators but does not block the
	// confirmation: policy favors the customer experience.
	if ev.Amount < b.DepositAmount {
		r.notifier.AmountMismatch(ctx, b.RefCode, ev.TransactionID, ev.Amount, b.DepositAmount)
	}

	paidAt := ev.OccurredAt
	if paidAt.IsZero() {
		paidAt = r.now().UTC()
	}

	method := ev.Method
	if method == "" {
		method = "bank_transfer"
	}

	noteLine := fmt.Sprintf("[%s] deposit paid via %s, txn %s",
		paidAt.UTC().Format("2006-01-02 15:04"), method, ev.TransactionID)

	err = r.repo.CompleteAndConfirm(ctx, b.ID, ev.TransactionID, method, paidAt, noteLine)
	if err != nil {
		if errors.Is(err, ErrStaleBooking) {
			// Lost a race with another delivery of the same event; the
			// booking is already confirmed.
			r.metrics.WebhookEvents.WithLabelValues(string(OutcomeDuplicate)).Inc()
			return OutcomeDuplicate, nil
		}
		return "", fmt.Errorf("confirm booking failed: %w", err)
	}

	r.metrics.WebhookEvents.WithLabelValues(string(OutcomeConfirmed)).Inc()
	r.logger.Info().Str("transaction_id", ev.TransactionID).
		Str("ref_code", b.RefCode).Int64("amount", ev.Amount).Msg("payment reconciled")

	// Notifications never block the HTTP response to the provider.
	go func() {
		bg := context.Background()
		r.notifier.BookingConfirmed(bg, b.RefCode)
		r.notifier.PaymentReceived(bg, b.RefCode, ev.TransactionID, ev.Amount)
	}()

	return OutcomeConfirmed, nil
}
