package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Notifier raises the notifications the booking lifecycle requires.
// Delivery transport (email, chat, admin feed) is handled by a separate
// system; this interface records the fact that a notification must go out.
type Notifier interface {
	BookingConfirmed(ctx context.Context, refCode string)
	BookingCancelled(ctx context.Context, refCode, reason string)
	PaymentReceived(ctx context.Context, refCode, transactionID string, amount int64)
	AmountMismatch(ctx context.Context, refCode, transactionID string, received, expected int64)
	OvertimeAlert(ctx context.Context, refCode string, overtimeMinutes int)
	EndingSoonAlert(ctx context.Context, refCode string, minutesLeft int)
	ArrivalReminder(ctx context.Context, refCode string, startTime time.Time)
}

// logNotifier emits each notification as a structured log event that the
// delivery pipeline tails.
type logNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *logNotifier) BookingConfirmed(_ context.Context, refCode string) {
	n.logger.Info().Str("event", "booking_confirmed").Str("ref_code", refCode).Msg("booking confirmed")
}

func (n *logNotifier) BookingCancelled(_ context.Context, refCode, reason string) {
	n.logger.Info().Str("event", "booking_cancelled").Str("ref_code", refCode).
		Str("reason", reason).Msg("booking cancelled")
}

func (n *logNotifier) PaymentReceived(_ context.Context, refCode, transactionID string, amount int64) {
	n.logger.Info().Str("event", "payment_received").Str("ref_code", refCode).
		Str("transaction_id", transactionID).Int64("amount", amount).Msg("new payment")
}

func (n *logNotifier) AmountMismatch(_ context.Context, refCode, transactionID string, received, expected int64) {
	// Flagged for operators, never blocks the customer.
	n.logger.Warn().Str("event", "amount_mismatch").Str("ref_code", refCode).
		Str("transaction_id", transactionID).
		Int64("received", received).Int64("expected", expected).
		Msg("payment amount below expected deposit")
}

func (n *logNotifier) OvertimeAlert(_ context.Context, refCode string, overtimeMinutes int) {
	n.logger.Warn().Str("event", "overtime").Str("ref_code", refCode).
		Int("overtime_minutes", overtimeMinutes).Msg("booking running past scheduled end")
}

func (n *logNotifier) EndingSoonAlert(_ context.Context, refCode string, minutesLeft int) {
	n.logger.Info().Str("event", "ending_soon").Str("ref_code", refCode).
		Int("minutes_left", minutesLeft).Msg("booking ending soon")
}

func (n *logNotifier) ArrivalReminder(_ context.Context, refCode string, startTime time.Time) {
	n.logger.Info().Str("event", "arrival_reminder").Str("ref_code", refCode).
		Time("start_time", startTime).Msg("pre-arrival reminder")
}
