package reward

import (
	"context"
)

type Service interface {
	// Credit issues coins to a customer wallet for a booking check-in.
	Credit(ctx context.Context, customerID, bookingID string, coins int64, reason string) (*CreditResult, error)

	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListLedger(ctx context.Context, customerID string, limit int) ([]*LedgerEntry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Credit(ctx context.Context, customerID, bookingID string, coins int64, reason string) (*CreditResult, error) {
	if coins <= 0 {
		return nil, ErrInvalidCoins
	}

	entry := &LedgerEntry{
		CustomerID: customerID,
		BookingID:  bookingID,
		Coins:      coins,
		Reason:     reason,
	}
	return s.repo.Credit(ctx, entry)
}

func (s *service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *service) ListLedger(ctx context.Context, customerID string, limit int) ([]*LedgerEntry, error) {
	return s.repo.ListLedger(ctx, customerID, limit)
}
