package payment

import (
	"context"
	"time"
)

// Service exposes the payment operations other modules depend on. It
// satisfies the booking module's PaymentRecorder and DepositSettler
// interfaces.
type Service interface {
	CreatePending(ctx context.Context, bookingID string, amount int64) error
	SettleDeposit(ctx context.Context, bookingID, transactionID, method string, paidAt time.Time, noteLine string) error
	GetByBookingID(ctx context.Context, bookingID string) (*Payment, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePending(ctx context.Context, bookingID string, amount int64) error {
	p := &Payment{
		BookingID: bookingID,
		Amount:    amount,
		Method:    "bank_transfer",
	}
	return s.repo.CreatePending(ctx, p)
}

func (s *service) SettleDeposit(ctx context.Context, bookingID, transactionID, method string, paidAt time.Time, noteLine string) error {
	return s.repo.CompleteAndConfirm(ctx, bookingID, transactionID, method, paidAt, noteLine)
}

func (s *service) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}
