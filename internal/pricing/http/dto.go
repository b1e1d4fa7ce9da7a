package http

import (
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing"
)

// UpsertRuleRequest carries one of the two plan shapes, discriminated by kind.
type UpsertRuleRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=tiered_hourly first_hour_plus"`
	RewardCoins int64  `json:"reward_coins" binding:"omitempty,min=0"`

	// tiered_hourly fields
	SmallPartyRate int64 `json:"small_party_rate"`
	LargePartyRate int64 `json:"large_party_rate"`
	PartyThreshold int   `json:"party_threshold"`

	// first_hour_plus fields
	FirstHourPrice int64 `json:"first_hour_price"`
	PerHourRate    int64 `json:"per_hour_rate"`
}

// Plan builds the tagged variant from the flat request body.
func (r *UpsertRuleRequest) Plan() (pricing.RatePlan, error) {
	switch r.Kind {
	case pricing.KindTieredHourly:
		return pricing.TieredHourly{
			SmallPartyRate: r.SmallPartyRate,
			LargePartyRate: r.LargePartyRate,
			PartyThreshold: r.PartyThreshold,
		}, nil
	case pricing.KindFirstHourPlus:
		return pricing.FirstHourPlus{
			FirstHourPrice: r.FirstHourPrice,
			PerHourRate:    r.PerHourRate,
		}, nil
	default:
		return nil, pricing.ErrUnknownKind
	}
}

type RuleResponse struct {
	Category    string           `json:"category"`
	Kind        string           `json:"kind"`
	Plan        pricing.RatePlan `json:"plan"`
	RewardCoins int64            `json:"reward_coins"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewRuleResponse(rule *pricing.Rule) RuleResponse {
	return RuleResponse{
		Category:    string(rule.Category),
		Kind:        rule.Plan.Kind(),
		Plan:        rule.Plan,
		RewardCoins: rule.RewardCoins,
		UpdatedAt:   rule.UpdatedAt,
	}
}

type QuoteRequest struct {
	PartySize       int `form:"party_size" binding:"required,min=1"`
	DurationMinutes int `form:"duration" binding:"required,min=1"`
}

type QuoteResponse struct {
	Category string `json:"category"`
	Estimate int64  `json:"estimate"`
	Deposit  int64  `json:"deposit"`
}
