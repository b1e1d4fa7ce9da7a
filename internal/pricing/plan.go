package pricing

import "math"

// Plan kind discriminators as persisted in pricing_rules.kind.
const (
	KindTieredHourly  = "tiered_hourly"
	KindFirstHourPlus = "first_hour_plus"
)

// RatePlan is the closed set of pricing shapes. Meeting-style resources use
// TieredHourly, pod-style resources use FirstHourPlus. The two shapes bill
// overtime differently: tiered rounds up to whole hours, first-hour-plus
// bills proportionally.
type RatePlan interface {
	// Estimate returns the scheduled-duration price in currency units.
	Estimate(partySize, durationMinutes int) int64

	// Overtime returns the surcharge for overtime minutes past the grace
	// period. Callers apply the grace period before calling.
	Overtime(partySize, overtimeMinutes int) int64

	// Kind returns the persisted discriminator.
	Kind() string
}

// TieredHourly prices by an hourly rate selected on party size.
type TieredHourly struct {
	SmallPartyRate int64 `json:"small_party_rate"`
	LargePartyRate int64 `json:"large_party_rate"`
	PartyThreshold int   `json:"party_threshold"`
}

func (p TieredHourly) rate(partySize int) int64 {
	if partySize < p.PartyThreshold {
		return p.SmallPartyRate
	}
	return p.LargePartyRate
}

func (p TieredHourly) Estimate(partySize, durationMinutes int) int64 {
	return roundMoney(float64(p.rate(partySize)) * float64(durationMinutes) / 60)
}

// Overtime rounds up to whole hours: any started overtime hour is billed in full.
func (p TieredHourly) Overtime(partySize, overtimeMinutes int) int64 {
	if overtimeMinutes <= 0 {
		return 0
	}
	hours := int64(math.Ceil(float64(overtimeMinutes) / 60))
	return hours * p.rate(partySize)
}

func (p TieredHourly) Kind() string { return KindTieredHourly }

// FirstHourPlus prices a flat first hour plus a per-hour rate beyond it.
type FirstHourPlus struct {
	FirstHourPrice int64 `json:"first_hour_price"`
	PerHourRate    int64 `json:"per_hour_rate"`
}

func (p FirstHourPlus) Estimate(_, durationMinutes int) int64 {
	if durationMinutes <= 60 {
		return p.FirstHourPrice
	}
	return p.FirstHourPrice + roundMoney(float64(p.PerHourRate)*float64(durationMinutes-60)/60)
}

// Overtime bills proportionally on the per-hour rate, no whole-hour rounding.
func (p FirstHourPlus) Overtime(_, overtimeMinutes int) int64 {
	if overtimeMinutes <= 0 {
		return 0
	}
	return roundMoney(float64(p.PerHourRate) * float64(overtimeMinutes) / 60)
}

func (p FirstHourPlus) Kind() string { return KindFirstHourPlus }

// Deposit is half the estimate, rounded to the nearest currency unit.
func Deposit(estimate int64) int64 {
	return roundMoney(float64(estimate) * 0.5)
}

// Surcharge applies the overtime grace period before dispatching to the plan.
// Overtime within the grace is free; past it the full overtime is billed.
func Surcharge(plan RatePlan, partySize, overtimeMinutes, graceMinutes int) int64 {
	if overtimeMinutes <= graceMinutes {
		return 0
	}
	return plan.Overtime(partySize, overtimeMinutes)
}

func roundMoney(v float64) int64 {
	return int64(math.Round(v))
}
