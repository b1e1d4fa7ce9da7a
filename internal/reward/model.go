package reward

import (
	"net/http"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/apperror"
)

var (
	ErrCustomerNotFound = apperror.New(http.StatusNotFound, "customer not found")
	ErrInvalidCoins     = apperror.New(http.StatusBadRequest, "coin amount must be positive")
)

// Tier is the loyalty level derived from the coin balance.
type Tier string

const (
	TierBase Tier = "base"
	TierMid  Tier = "mid"
	TierTop  Tier = "top"
)

// Tier thresholds. The tier is recomputed from the balance inside the
// same atomic update that credits coins.
const (
	midTierThreshold = 50
	topTierThreshold = 100
)

// TierFor maps a coin balance to its tier.
func TierFor(balance int64) Tier {
	switch {
	case balance >= topTierThreshold:
		return TierTop
	case balance >= midTierThreshold:
		return TierMid
	default:
		return TierBase
	}
}

// Customer is the wallet holder. Account management lives elsewhere;
// this module only reads identity and owns the coin balance.
type Customer struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	CoinBalance int64
	Tier        Tier
	CreatedAt   time.Time
}

// LedgerEntry records one coin movement. The ledger and the balance must
// never disagree: both are written in a single transaction.
type LedgerEntry struct {
	ID         string
	CustomerID string
	BookingID  string
	Coins      int64
	Reason     string
	CreatedAt  time.Time
}

// CreditResult reports the state after a credit was applied.
type CreditResult struct {
	NewBalance int64
	Tier       Tier
	Upgraded   bool
}
