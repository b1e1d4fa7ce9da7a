package http

import (
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward"
)

type WalletResponse struct {
	CustomerID  string        `json:"customer_id"`
	Name        string        `json:"name"`
	CoinBalance int64         `json:"coin_balance"`
	Tier        string        `json:"tier"`
	Ledger      []LedgerEntry `json:"ledger"`
}

type LedgerEntry struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Coins     int64     `json:"coins"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func NewWalletResponse(c *reward.Customer, entries []*reward.LedgerEntry) WalletResponse {
	ledger := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		ledger[i] = LedgerEntry{
			ID:        e.ID,
			BookingID: e.BookingID,
			Coins:     e.Coins,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		}
	}

	return WalletResponse{
		CustomerID:  c.ID,
		Name:        c.Name,
		CoinBalance: c.CoinBalance,
		Tier:        string(c.Tier),
		Ledger:      ledger,
	}
}
