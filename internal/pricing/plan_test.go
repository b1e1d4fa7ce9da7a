package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTieredHourlyEstimate(t *testing.T) {
	plan := TieredHourly{SmallPartyRate: 100, LargePartyRate: 160, PartyThreshold: 5}

	t.Run("Small Party", func(t *testing.T) {
		assert.Equal(t, int64(200), plan.Estimate(2, 120))
		assert.Equal(t, int64(150), plan.Estimate(4, 90))
	})

	t.Run("Large Party At Threshold", func(t *testing.T) {
		assert.Equal(t, int64(320), plan.Estimate(5, 120))
		assert.Equal(t, int64(320), plan.Estimate(8, 120))
	})
}

func TestTieredHourlyOvertimeRoundsUp(t *testing.T) {
	plan := TieredHourly{SmallPartyRate: 100, LargePartyRate: 160, PartyThreshold: 5}

	// Any started hour is billed in full.
	assert.Equal(t, int64(0), plan.Overtime(2, 0))
	assert.Equal(t, int64(100), plan.Overtime(2, 1))
	assert.Equal(t, int64(100), plan.Overtime(2, 60))
	assert.Equal(t, int64(200), plan.Overtime(2, 61))
	assert.Equal(t, int64(320), plan.Overtime(6, 75))
}

func TestFirstHourPlusEstimate(t *testing.T) {
	plan := FirstHourPlus{FirstHourPrice: 80, PerHourRate: 50}

	t.Run("Within First Hour", func(t *testing.T) {
		assert.Equal(t, int64(80), plan.Estimate(1, 30))
		assert.Equal(t, int64(80), plan.Estimate(1, 60))
	})

	t.Run("Beyond First Hour", func(t *testing.T) {
		// 90 minutes = first hour + half an hour at the per-hour rate.
		assert.Equal(t, int64(105), plan.Estimate(1, 90))
		assert.Equal(t, int64(130), plan.Estimate(1, 120))
	})
}

func TestFirstHourPlusOvertimeIsProportional(t *testing.T) {
	plan := FirstHourPlus{FirstHourPrice: 80, PerHourRate: 60}

	assert.Equal(t, int64(0), plan.Overtime(1, 0))
	assert.Equal(t, int64(1), plan.Overtime(1, 1))
	assert.Equal(t, int64(30), plan.Overtime(1, 30))
	assert.Equal(t, int64(61), plan.Overtime(1, 61))
}

func TestDepositRounding(t *testing.T) {
	assert.Equal(t, int64(50), Deposit(100))
	assert.Equal(t, int64(51), Deposit(101)) // 50.5 rounds up
	assert.Equal(t, int64(50), Deposit(99))  // 49.5 rounds up
	assert.Equal(t, int64(0), Deposit(0))
}

func TestSurchargeGracePeriod(t *testing.T) {
	plan := TieredHourly{SmallPartyRate: 100, LargePartyRate: 160, PartyThreshold: 5}

	t.Run("Within Grace Is Free", func(t *testing.T) {
		assert.Equal(t, int64(0), Surcharge(plan, 2, 10, 15))
		assert.Equal(t, int64(0), Surcharge(plan, 2, 15, 15))
	})

	t.Run("Past Grace Bills Full Overtime", func(t *testing.T) {
		// Grace is a threshold, not a deduction: 16 minutes past the end
		// bills the whole 16 minutes, rounded up to an hour.
		assert.Equal(t, int64(100), Surcharge(plan, 2, 16, 15))
		assert.Equal(t, int64(200), Surcharge(plan, 2, 70, 15))
	})
}
