package pricing

import (
	"net/http"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/apperror"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
)

var (
	ErrRuleNotFound    = apperror.New(http.StatusNotFound, "pricing rule not found")
	ErrUnknownKind     = apperror.New(http.StatusBadRequest, "unknown pricing plan kind")
	ErrInvalidRates    = apperror.New(http.StatusBadRequest, "rates must be positive")
	ErrInvalidDuration = apperror.New(http.StatusBadRequest, "duration must be positive")
)

// Rule binds a resource category to its rate plan and the nerd-coin
// reward issued at check-in. RewardCoins is 0 for categories without
// a reward.
type Rule struct {
	Category    resource.Category
	Plan        RatePlan
	RewardCoins int64
	UpdatedAt   time.Time
}

// Quote is the computed price for a proposed booking.
type Quote struct {
	Estimate int64
	Deposit  int64
}
