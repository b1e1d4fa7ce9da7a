package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/metrics"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward"
)

// memRepo is an in-memory Repository with the same overlap semantics as
// the SQL implementation.
type memRepo struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	seq      int
	now      func() time.Time
}

func newMemRepo(now func() time.Time) *memRepo {
	return &memRepo{bookings: make(map[string]*Booking), now: now}
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	b.ID = fmt.Sprintf("bk-%03d", r.seq)
	b.CreatedAt = r.now()
	b.UpdatedAt = b.CreatedAt

	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memRepo) GetPendingByRefCode(_ context.Context, refCode string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.RefCode == refCode && b.Status == StatusPending && b.DepositPaidAt == nil {
			clone := *b
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) List(_ context.Context, _ Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		clone := *b
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *memRepo) Update(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = r.now()
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *memRepo) HasOverlap(_ context.Context, resourceID string, start, end time.Time, pendingCutoff time.Time, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.ResourceID != resourceID || b.ID == excludeID {
			continue
		}
		if !(start.Before(b.EndTime) && end.After(b.StartTime)) {
			continue
		}
		switch b.Status {
		case StatusConfirmed, StatusInProgress, StatusCompleted:
			return true, nil
		case StatusPending:
			if b.CreatedAt.After(pendingCutoff) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *memRepo) CountOnDate(_ context.Context, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.Date.Equal(date) {
			count++
		}
	}
	return count, nil
}

func (r *memRepo) ListExpiredHolds(_ context.Context, cutoff time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusPending && b.DepositPaidAt == nil &&
			b.PaymentStartedAt != nil && b.PaymentStartedAt.Before(cutoff) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRepo) ListInProgress(_ context.Context) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusInProgress {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRepo) ListConfirmedStartingBetween(_ context.Context, from, to time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

// fakeResources serves a fixed catalog.
type fakeResources struct {
	resources map[string]*resource.Resource
}

func (f *fakeResources) Create(_ context.Context, _ resource.CreateRequest) (*resource.Resource, error) {
	return nil, nil
}

func (f *fakeResources) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return res, nil
}

func (f *fakeResources) List(_ context.Context, _ resource.Filter) ([]*resource.Resource, int, error) {
	return nil, 0, nil
}

// fakePricing serves one rule for every category.
type fakePricing struct {
	rule *pricing.Rule
}

func (f *fakePricing) RuleFor(_ context.Context, _ resource.Category) (*pricing.Rule, error) {
	return f.rule, nil
}

func (f *fakePricing) QuoteFor(_ context.Context, _ resource.Category, partySize, durationMinutes int) (*pricing.Quote, error) {
	estimate := f.rule.Plan.Estimate(partySize, durationMinutes)
	return &pricing.Quote{Estimate: estimate, Deposit: pricing.Deposit(estimate)}, nil
}

func (f *fakePricing) Upsert(_ context.Context, _ pricing.UpsertRequest) (*pricing.Rule, error) {
	return nil, nil
}

// fakeRewards records credits and tracks a single balance.
type fakeRewards struct {
	balance int64
	credits []int64
}

func (f *fakeRewards) Credit(_ context.Context, _, _ string, coins int64, _ string) (*reward.CreditResult, error) {
	f.balance += coins
	f.credits = append(f.credits, coins)
	return &reward.CreditResult{NewBalance: f.balance, Tier: reward.TierFor(f.balance)}, nil
}

func (f *fakeRewards) GetCustomer(_ context.Context, _ string) (*reward.Customer, error) {
	return nil, reward.ErrCustomerNotFound
}

func (f *fakeRewards) ListLedger(_ context.Context, _ string, _ int) ([]*reward.LedgerEntry, error) {
	return nil, nil
}

// fakePayments records pending-payment requests.
type fakePayments struct {
	pending map[string]int64
}

func (f *fakePayments) CreatePending(_ context.Context, bookingID string, amount int64) error {
	f.pending[bookingID] = amount
	return nil
}

// fakeSettler mimics the atomic confirm: booking confirmed, deposit marked
// paid, note appended.
type fakeSettler struct {
	repo *memRepo
}

func (f *fakeSettler) SettleDeposit(ctx context.Context, bookingID, transactionID, method string, paidAt time.Time, noteLine string) error {
	b, err := f.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	b.Status = StatusConfirmed
	b.DepositPaidAt = &paidAt
	b.TransactionID = transactionID
	if b.Note == "" {
		b.Note = noteLine
	} else {
		b.Note += "\n" + noteLine
	}
	return f.repo.Update(ctx, b)
}

// fakeNotifier counts notifications by event name.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) BookingConfirmed(_ context.Context, _ string) { f.record("confirmed") }
func (f *fakeNotifier) BookingCancelled(_ context.Context, _, _ string) {
	f.record("cancelled")
}
func (f *fakeNotifier) PaymentReceived(_ context.Context, _, _ string, _ int64) {
	f.record("payment_received")
}
func (f *fakeNotifier) AmountMismatch(_ context.Context, _, _ string, _, _ int64) {
	f.record("amount_mismatch")
}
func (f *fakeNotifier) OvertimeAlert(_ context.Context, _ string, _ int) { f.record("overtime") }
func (f *fakeNotifier) EndingSoonAlert(_ context.Context, _ string, _ int) {
	f.record("ending_soon")
}
func (f *fakeNotifier) ArrivalReminder(_ context.Context, _ string, _ time.Time) {
	f.record("reminder")
}

type testEnv struct {
	svc      *service
	repo     *memRepo
	payments *fakePayments
	rewards  *fakeRewards
	notifier *fakeNotifier
	clock    time.Time
}

func (e *testEnv) setClock(t time.Time) {
	e.clock = t
	e.svc.now = func() time.Time { return e.clock }
	e.repo.now = e.svc.now
}

func (e *testEnv) advance(d time.Duration) {
	e.setClock(e.clock.Add(d))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}
	nowFn := func() time.Time { return env.clock }

	env.repo = newMemRepo(nowFn)
	env.payments = &fakePayments{pending: make(map[string]int64)}
	env.rewards = &fakeRewards{}
	env.notifier = &fakeNotifier{}

	resources := &fakeResources{resources: map[string]*resource.Resource{
		"room-a": {ID: "room-a", Name: "Meeting Room A", Category: resource.CategoryLongTable, Capacity: 8},
		"pod-1":  {ID: "pod-1", Name: "Pod 1", Category: resource.CategorySoloPod, Capacity: 1},
	}}
	pricingSvc := &fakePricing{rule: &pricing.Rule{
		Category:    resource.CategoryLongTable,
		Plan:        pricing.TieredHourly{SmallPartyRate: 100, LargePartyRate: 160, PartyThreshold: 5},
		RewardCoins: 10,
	}}

	m := metrics.New(prometheus.NewRegistry())

	svc := NewService(
		env.repo,
		resources,
		pricingSvc,
		env.rewards,
		env.payments,
		&fakeSettler{repo: env.repo},
		env.notifier,
		m,
		zerolog.Nop(),
		Config{
			RefCodePrefix: "NS",
			OpenTime:      "08:00",
			CloseTime:     "22:00",
			HoldWindow:    5 * time.Minute,
			OvertimeGrace: 15 * time.Minute,
		},
	)
	env.svc = svc.(*service)
	env.svc.now = nowFn

	return env
}

func (e *testEnv) mustCreate(t *testing.T, resourceID, date, start, end string, partySize int) *Booking {
	t.Helper()

	b, err := e.svc.Create(context.Background(), CreateRequest{
		ResourceID:   resourceID,
		Date:         date,
		Start:        start,
		End:          end,
		PartySize:    partySize,
		ContactName:  "Linh",
		ContactPhone: "0900000001",
	})
	require.NoError(t, err)
	return b
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	assert.Equal(t, "NS-20260901-001", b.RefCode)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, int64(200), b.EstimatedAmount)
	assert.Equal(t, int64(100), b.DepositAmount)
	assert.True(t, strings.Contains(b.Note, "created"))

	// A pending payment row accompanies every booking.
	assert.Equal(t, int64(100), env.payments.pending[b.ID])

	// Ref code sequence increments per day.
	b2 := env.mustCreate(t, "pod-1", "2026-09-01", "10:00", "12:00", 1)
	assert.Equal(t, "NS-20260901-002", b2.RefCode)

	// Fresh from the store it still reads pending.
	got, err := env.svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := CreateRequest{
		ResourceID:   "room-a",
		Date:         "2026-09-01",
		Start:        "10:00",
		End:          "12:00",
		PartySize:    3,
		ContactName:  "Linh",
		ContactPhone: "0900000001",
	}

	cases := []struct {
		name    string
		mutate  func(r *CreateRequest)
		wantErr error
	}{
		{"Too Short", func(r *CreateRequest) { r.End = "10:45" }, ErrDurationTooShort},
		{"End Before Start", func(r *CreateRequest) { r.End = "09:00" }, ErrInvalidTimeRange},
		{"Before Opening", func(r *CreateRequest) { r.Start = "07:00"; r.End = "09:00" }, ErrOutsideHours},
		{"Past Closing", func(r *CreateRequest) { r.Start = "21:00"; r.End = "23:00" }, ErrOutsideHours},
		{"Bad Date", func(r *CreateRequest) { r.Date = "01-09-2026" }, ErrInvalidDate},
		{"Bad Clock", func(r *CreateRequest) { r.Start = "10am" }, ErrInvalidTimeFormat},
		{"Unknown Resource", func(r *CreateRequest) { r.ResourceID = "nope" }, ErrResourceNotFound},
		{"Party Too Large", func(r *CreateRequest) { r.PartySize = 9 }, ErrPartyTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := env.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("Start In The Past", func(t *testing.T) {
		env.setClock(time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC))
		_, err := env.svc.Create(ctx, base)
		assert.ErrorIs(t, err, ErrStartTimePast)
	})
}

func TestSlotConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	t.Run("Fresh Pending Hold Blocks", func(t *testing.T) {
		_, err := env.svc.Create(ctx, CreateRequest{
			ResourceID: "room-a", Date: "2026-09-01", Start: "11:00", End: "13:00",
			PartySize: 2, ContactName: "Minh", ContactPhone: "0900000002",
		})
		assert.ErrorIs(t, err, ErrTimeConflict)

		ok, err := env.svc.IsAvailable(ctx, "room-a", "2026-09-01", "11:00", "13:00")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Back To Back Is Not A Conflict", func(t *testing.T) {
		ok, err := env.svc.IsAvailable(ctx, "room-a", "2026-09-01", "12:00", "14:00")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Other Resource Unaffected", func(t *testing.T) {
		ok, err := env.svc.IsAvailable(ctx, "pod-1", "2026-09-01", "10:00", "12:00")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Stale Pending Hold Releases The Slot", func(t *testing.T) {
		env.advance(6 * time.Minute) // past the 5-minute hold window

		ok, err := env.svc.IsAvailable(ctx, "room-a", "2026-09-01", "11:00", "13:00")
		require.NoError(t, err)
		assert.True(t, ok, "an aged unpaid hold must not block the slot")
	})

	t.Run("Confirmed Blocks Regardless Of Age", func(t *testing.T) {
		_, err := env.svc.ConfirmCash(ctx, b.ID)
		require.NoError(t, err)

		env.advance(30 * time.Minute)
		ok, err := env.svc.IsAvailable(ctx, "room-a", "2026-09-01", "11:00", "13:00")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMarkPaymentStarted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	got, err := env.svc.MarkPaymentStarted(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentStartedAt)
	first := *got.PaymentStartedAt

	// Marking twice keeps the original timestamp.
	env.advance(time.Minute)
	got, err = env.svc.MarkPaymentStarted(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *got.PaymentStartedAt)
}

func TestConfirmCash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	got, err := env.svc.ConfirmCash(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	require.NotNil(t, got.DepositPaidAt)
	assert.Equal(t, 1, env.notifier.count("confirmed"))

	// A second cash confirm must be rejected: the booking is no longer
	// pending.
	_, err = env.svc.ConfirmCash(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCheckInAndReward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("With Customer Account", func(t *testing.T) {
		b, err := env.svc.Create(ctx, CreateRequest{
			ResourceID: "room-a", Date: "2026-09-01", Start: "10:00", End: "12:00",
			PartySize: 3, CustomerID: "cust-1",
			ContactName: "Linh", ContactPhone: "0900000001",
		})
		require.NoError(t, err)

		_, err = env.svc.ConfirmCash(ctx, b.ID)
		require.NoError(t, err)

		got, warning, err := env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)
		assert.Empty(t, warning)
		assert.Equal(t, StatusInProgress, got.Status)
		require.NotNil(t, got.ActualStartAt)
		assert.Equal(t, int64(10), got.RewardIssued)
		assert.Equal(t, []int64{10}, env.rewards.credits)
	})

	t.Run("Walk In Without Deposit Gets A Warning", func(t *testing.T) {
		b := env.mustCreate(t, "pod-1", "2026-09-01", "14:00", "16:00", 1)

		got, warning, err := env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, WarnNoDeposit, warning)
		assert.Equal(t, StatusInProgress, got.Status)
		// No customer account, no coins.
		assert.Equal(t, []int64{10}, env.rewards.credits)
	})

	t.Run("In Progress Cannot Check In Again", func(t *testing.T) {
		b := env.mustCreate(t, "pod-1", "2026-09-01", "17:00", "19:00", 1)
		_, _, err := env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)
		_, _, err = env.svc.CheckIn(ctx, b.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

// flakyUpdateRepo fails the first n Update calls, then delegates.
type flakyUpdateRepo struct {
	*memRepo
	failures int
}

func (r *flakyUpdateRepo) Update(ctx context.Context, b *Booking) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("connection reset by peer")
	}
	return r.memRepo.Update(ctx, b)
}

func TestCheckInCreditsOnlyAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.Create(ctx, CreateRequest{
		ResourceID: "room-a", Date: "2026-09-01", Start: "10:00", End: "12:00",
		PartySize: 3, CustomerID: "cust-1",
		ContactName: "Linh", ContactPhone: "0900000001",
	})
	require.NoError(t, err)
	_, err = env.svc.ConfirmCash(ctx, b.ID)
	require.NoError(t, err)

	env.svc.repo = &flakyUpdateRepo{memRepo: env.repo, failures: 1}

	// A transient store failure must abort the check-in before any coins
	// move.
	_, _, err = env.svc.CheckIn(ctx, b.ID)
	require.Error(t, err)

	stored, err := env.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.Empty(t, env.rewards.credits)

	// The staff retry then credits exactly once.
	got, _, err := env.svc.CheckIn(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, int64(10), got.RewardIssued)
	assert.Equal(t, []int64{10}, env.rewards.credits)
	assert.Equal(t, int64(10), env.rewards.balance)
}

// racingCreateRepo simulates a create on another resource committing the
// same day-sequence number first: the initial Create loses the ref code
// race after a shadow booking has taken the number.
type racingCreateRepo struct {
	*memRepo
	raced bool
}

func (r *racingCreateRepo) Create(ctx context.Context, b *Booking) error {
	if !r.raced {
		r.raced = true
		shadow := &Booking{
			RefCode:      b.RefCode,
			ResourceID:   "pod-1",
			Date:         b.Date,
			StartTime:    b.StartTime,
			EndTime:      b.EndTime,
			PartySize:    1,
			Status:       StatusPending,
			ContactName:  "Minh",
			ContactPhone: "0900000002",
		}
		if err := r.memRepo.Create(ctx, shadow); err != nil {
			return err
		}
		return ErrRefCodeTaken
	}
	return r.memRepo.Create(ctx, b)
}

func TestCreateRetriesLostRefCodeRace(t *testing.T) {
	env := newTestEnv(t)
	racing := &racingCreateRepo{memRepo: env.repo}
	env.svc.repo = racing

	// The free slot must not be rejected just because another resource's
	// booking won the sequence number.
	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	assert.True(t, racing.raced)
	assert.Equal(t, "NS-20260901-002", b.RefCode)
	assert.Equal(t, StatusPending, b.Status)
}

func TestCheckOut(t *testing.T) {
	ctx := context.Background()

	t.Run("On Time", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)
		_, err := env.svc.ConfirmCash(ctx, b.ID)
		require.NoError(t, err)

		env.setClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
		_, _, err = env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)

		env.setClock(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
		got, remaining, err := env.svc.CheckOut(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.Equal(t, int64(200), got.ActualAmount)
		// Estimate 200 minus the paid 100 deposit.
		assert.Equal(t, int64(100), remaining)
	})

	t.Run("Overtime Within Grace Is Free", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)
		_, _, err := env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)

		env.setClock(time.Date(2026, 9, 1, 12, 14, 0, 0, time.UTC))
		got, _, err := env.svc.CheckOut(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(200), got.ActualAmount)
	})

	t.Run("Overtime Past Grace Bills A Full Hour", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)
		_, _, err := env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)

		env.setClock(time.Date(2026, 9, 1, 12, 20, 0, 0, time.UTC))
		got, remaining, err := env.svc.CheckOut(ctx, b.ID)
		require.NoError(t, err)
		// 20 minutes over at 100/h tiered: one started hour.
		assert.Equal(t, int64(300), got.ActualAmount)
		assert.True(t, strings.Contains(got.Note, "20 min overtime"))
		// No deposit was paid on this one.
		assert.Equal(t, int64(300), remaining)
	})

	t.Run("Overtime Counts From Scheduled Start", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

		// Late arrival: checked in at 10:30, but the slot still ends 12:00.
		env.setClock(time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC))
		_, _, err := env.svc.CheckIn(ctx, b.ID)
		require.NoError(t, err)

		env.setClock(time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC))
		got, _, err := env.svc.CheckOut(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(300), got.ActualAmount, "late check-in must not extend the slot")
	})
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	got, err := env.svc.Cancel(ctx, b.ID, "customer request", "staff")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.True(t, strings.Contains(got.Note, "cancelled by staff: customer request"))
	assert.Equal(t, 1, env.notifier.count("cancelled"))

	// Cancelling again is a no-op, not an error.
	again, err := env.svc.Cancel(ctx, b.ID, "duplicate click", "staff")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
	assert.Equal(t, 1, env.notifier.count("cancelled"), "no duplicate notification")

	t.Run("In Progress Cannot Be Cancelled", func(t *testing.T) {
		b2 := env.mustCreate(t, "pod-1", "2026-09-01", "10:00", "12:00", 1)
		_, _, err := env.svc.CheckIn(ctx, b2.ID)
		require.NoError(t, err)

		_, err = env.svc.Cancel(ctx, b2.ID, "too late", "staff")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestMarkNoShow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.mustCreate(t, "room-a", "2026-09-01", "10:00", "12:00", 3)

	// Pending bookings cannot be no-showed, only confirmed ones.
	_, err := env.svc.MarkNoShow(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.svc.ConfirmCash(ctx, b.ID)
	require.NoError(t, err)

	got, err := env.svc.MarkNoShow(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, got.Status)
}
