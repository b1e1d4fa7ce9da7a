package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/metrics"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/notify"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// WarnNoDeposit is returned (not raised as an error) when staff check
	// in a booking that never recorded a deposit.
	WarnNoDeposit = "no deposit recorded for this booking"

	minDurationMinutes = 60

	// refCodeRetries bounds recounting after a day-sequence collision
	// with a create on another resource.
	refCodeRetries = 3
)

// PaymentRecorder creates the pending payment row that accompanies every
// new booking. Implemented by the payment module.
type PaymentRecorder interface {
	CreatePending(ctx context.Context, bookingID string, amount int64) error
}

// DepositSettler marks the booking confirmed and its payment completed in
// one atomic unit. Implemented by the payment module; also used directly
// by the reconciler for bank-transfer confirmations.
type DepositSettler interface {
	SettleDeposit(ctx context.Context, bookingID, transactionID, method string, paidAt time.Time, noteLine string) error
}

type CreateRequest struct {
	ResourceID   string
	Date         string // YYYY-MM-DD
	Start        string // HH:MM
	End          string // HH:MM
	PartySize    int
	CustomerID   string
	ContactName  string
	ContactPhone string
}

type Service interface {
	// IsAvailable reports whether the proposed interval can be accepted.
	// A store error fails closed: the slot is reported unavailable.
	IsAvailable(ctx context.Context, resourceID, date, start, end string) (bool, error)

	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetPendingByRefCode(ctx context.Context, refCode string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// MarkPaymentStarted records that the customer entered the payment
	// flow. The expiry job only cancels holds that carry this marker.
	MarkPaymentStarted(ctx context.Context, id string) (*Booking, error)

	// ConfirmCash settles the deposit as cash taken by staff.
	ConfirmCash(ctx context.Context, id string) (*Booking, error)

	// CheckIn moves the booking in progress and credits reward coins.
	// The returned warning is non-blocking staff guidance.
	CheckIn(ctx context.Context, id string) (*Booking, string, error)

	// CheckOut completes the booking and returns the remaining amount due
	// after the overtime surcharge and any paid deposit.
	CheckOut(ctx context.Context, id string) (*Booking, int64, error)

	// Cancel is idempotent: cancelling an already-cancelled booking
	// returns it unchanged.
	Cancel(ctx context.Context, id, reason, actor string) (*Booking, error)

	MarkNoShow(ctx context.Context, id string) (*Booking, error)
}

// Config carries the operating constraints enforced by the service.
type Config struct {
	RefCodePrefix string
	OpenTime      string // HH:MM
	CloseTime     string // HH:MM
	HoldWindow    time.Duration
	OvertimeGrace time.Duration
}

type service struct {
	repo       Repository
	resService resource.Service
	priService pricing.Service
	rewService reward.Service
	payments   PaymentRecorder
	settler    DepositSettler
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	cfg        Config

	locks *slotLocks
	now   func() time.Time
}

func NewService(
	repo Repository,
	resService resource.Service,
	priService pricing.Service,
	rewService reward.Service,
	payments PaymentRecorder,
	settler DepositSettler,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
	cfg Config,
) Service {
	return &service{
		repo:       repo,
		resService: resService,
		priService: priService,
		rewService: rewService,
		payments:   payments,
		settler:    settler,
		notifier:   notifier,
		metrics:    m,
		logger:     logger.With().Str("component", "booking").Logger(),
		cfg:        cfg,
		locks:      newSlotLocks(),
		now:        time.Now,
	}
}

func (s *service) IsAvailable(ctx context.Context, resourceID, date, start, end string) (bool, error) {
	_, startAt, endAt, err := parseSlot(date, start, end)
	if err != nil {
		return false, err
	}

	cutoff := s.now().UTC().Add(-s.cfg.HoldWindow)
	hasOverlap, err := s.repo.HasOverlap(ctx, resourceID, startAt, endAt, cutoff, "")
	if err != nil {
		// Fail closed: never report a slot available on a store error.
		return false, fmt.Errorf("availability check failed: %w", err)
	}
	return !hasOverlap, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	day, startAt, endAt, err := parseSlot(req.Date, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	duration := int(endAt.Sub(startAt) / time.Minute)
	if duration < minDurationMinutes {
		return nil, ErrDurationTooShort
	}

	if err := s.checkOperatingHours(day, startAt, endAt); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if startAt.Before(now) {
		return nil, ErrStartTimePast
	}

	res, err := s.resService.GetByID(ctx, req.ResourceID)
	if err != nil {
		if err == resource.ErrNotFound {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if req.PartySize > res.Capacity {
		return nil, ErrPartyTooLarge
	}

	quote, err := s.priService.QuoteFor(ctx, res.Category, req.PartySize, duration)
	if err != nil {
		return nil, err
	}

	// Serialize check-and-insert per resource+date. The exclusion
	// constraint in the bookings table is the backstop.
	unlock := s.locks.acquire(req.ResourceID, day)
	defer unlock()

	cutoff := now.Add(-s.cfg.HoldWindow)
	hasOverlap, err := s.repo.HasOverlap(ctx, req.ResourceID, startAt, endAt, cutoff, "")
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}
	if hasOverlap {
		s.metrics.SlotConflicts.Inc()
		return nil, ErrTimeConflict
	}

	// The slot lock serializes creates per resource+date, but the day
	// sequence spans all resources: a concurrent create on another
	// resource can win the same number. Recount and retry on that
	// collision instead of surfacing it as a slot conflict.
	var b *Booking
	for attempt := 0; ; attempt++ {
		seq, err := s.repo.CountOnDate(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("ref code sequencing failed: %w", err)
		}

		b = &Booking{
			RefCode:         FormatRefCode(s.cfg.RefCodePrefix, day, seq+1),
			ResourceID:      req.ResourceID,
			Date:            day,
			StartTime:       startAt,
			EndTime:         endAt,
			PartySize:       req.PartySize,
			Status:          StatusPending,
			EstimatedAmount: quote.Estimate,
			DepositAmount:   quote.Deposit,
			CustomerID:      req.CustomerID,
			ContactName:     req.ContactName,
			ContactPhone:    req.ContactPhone,
		}
		b.AppendNote(now, fmt.Sprintf("created, estimate %d, deposit %d", quote.Estimate, quote.Deposit))

		err = s.repo.Create(ctx, b)
		if err == nil {
			break
		}
		if err == ErrRefCodeTaken && attempt < refCodeRetries {
			continue
		}
		if err == ErrTimeConflict {
			s.metrics.SlotConflicts.Inc()
		}
		return nil, err
	}

	// The payment row is a post-commit side effect: a failure here is
	// logged and alerted on, never allowed to revert the booking.
	if err := s.payments.CreatePending(ctx, b.ID, b.DepositAmount); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("create pending payment failed")
	}

	s.metrics.BookingsCreated.Inc()
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetPendingByRefCode(ctx context.Context, refCode string) (*Booking, error) {
	return s.repo.GetPendingByRefCode(ctx, refCode)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) MarkPaymentStarted(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	if b.PaymentStartedAt != nil {
		return b, nil
	}

	now := s.now().UTC()
	b.PaymentStartedAt = &now
	b.AppendNote(now, "payment process started")

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ConfirmCash(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	if b.DepositPaidAt != nil {
		return nil, ErrAlreadyPaid
	}

	now := s.now().UTC()
	noteLine := noteEntry(now, "deposit paid in cash")
	if err := s.settler.SettleDeposit(ctx, b.ID, "", "cash", now, noteLine); err != nil {
		return nil, err
	}

	s.notifier.BookingConfirmed(ctx, b.RefCode)
	return s.repo.GetByID(ctx, id)
}

func (s *service) CheckIn(ctx context.Context, id string) (*Booking, string, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !b.Status.CanTransitionTo(StatusInProgress) {
		return nil, "", ErrInvalidTransition
	}

	warning := ""
	if b.DepositPaidAt == nil {
		warning = WarnNoDeposit
	}

	now := s.now().UTC()
	b.Status = StatusInProgress
	b.ActualStartAt = &now
	b.AppendNote(now, "checked in")

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, "", err
	}

	// Coins move only after the check-in is durably recorded: if the
	// update above fails, the wallet stays untouched and a staff retry
	// starts clean instead of crediting twice.
	if s.creditReward(ctx, b, now) {
		if err := s.repo.Update(ctx, b); err != nil {
			s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("persist reward fields failed")
		}
	}
	return b, warning, nil
}

// creditReward issues nerd coins at check-in for customers with an account
// and reports whether it mutated the booking's reward fields. The ledger
// write and balance increment are atomic inside the reward module; a
// failure here is logged and never blocks the check-in. A booking that
// already carries RewardIssuedAt is never credited again.
func (s *service) creditReward(ctx context.Context, b *Booking, now time.Time) bool {
	if b.CustomerID == "" || b.RewardIssuedAt != nil {
		return false
	}

	res, err := s.resService.GetByID(ctx, b.ResourceID)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("reward: resource lookup failed")
		return false
	}

	rule, err := s.priService.RuleFor(ctx, res.Category)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("reward: pricing rule lookup failed")
		return false
	}
	if rule.RewardCoins <= 0 {
		return false
	}

	result, err := s.rewService.Credit(ctx, b.CustomerID, b.ID, rule.RewardCoins, "check-in reward")
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).
			Str("customer_id", b.CustomerID).Msg("reward: credit failed")
		return false
	}

	b.RewardIssued = rule.RewardCoins
	b.RewardIssuedAt = &now
	b.AppendNote(now, fmt.Sprintf("credited %d coins, balance %d (%s)", rule.RewardCoins, result.NewBalance, result.Tier))
	s.metrics.CoinsCredited.Add(float64(rule.RewardCoins))
	return true
}

func (s *service) CheckOut(ctx context.Context, id string) (*Booking, int64, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !b.Status.CanTransitionTo(StatusCompleted) {
		return nil, 0, ErrInvalidTransition
	}

	now := s.now().UTC()

	// Overtime is measured from the scheduled start, not the actual
	// check-in time: a late arrival does not extend the slot.
	elapsed := int(now.Sub(b.StartTime) / time.Minute)
	overtime := elapsed - b.ScheduledMinutes()

	surcharge, err := s.overtimeSurcharge(ctx, b, overtime)
	if err != nil {
		return nil, 0, err
	}

	b.Status = StatusCompleted
	b.ActualEndAt = &now
	b.ActualAmount = b.EstimatedAmount + surcharge
	if surcharge > 0 {
		b.AppendNote(now, fmt.Sprintf("checked out, %d min overtime, surcharge %d", overtime, surcharge))
	} else {
		b.AppendNote(now, "checked out")
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, 0, err
	}

	var depositPaid int64
	if b.DepositPaidAt != nil {
		depositPaid = b.DepositAmount
	}
	remaining := b.ActualAmount - depositPaid

	return b, remaining, nil
}

func (s *service) overtimeSurcharge(ctx context.Context, b *Booking, overtime int) (int64, error) {
	graceMinutes := int(s.cfg.OvertimeGrace / time.Minute)
	if overtime <= graceMinutes {
		return 0, nil
	}

	res, err := s.resService.GetByID(ctx, b.ResourceID)
	if err != nil {
		return 0, err
	}
	rule, err := s.priService.RuleFor(ctx, res.Category)
	if err != nil {
		return 0, err
	}

	return pricing.Surcharge(rule.Plan, b.PartySize, overtime, graceMinutes), nil
}

func (s *service) Cancel(ctx context.Context, id, reason, actor string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cancelling an already-cancelled booking is a safe no-op.
	if b.Status == StatusCancelled {
		return b, nil
	}
	if !b.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	now := s.now().UTC()
	b.Status = StatusCancelled
	b.AppendNote(now, fmt.Sprintf("cancelled by %s: %s", actor, reason))

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.notifier.BookingCancelled(ctx, b.RefCode, reason)
	return b, nil
}

func (s *service) MarkNoShow(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(StatusNoShow) {
		return nil, ErrInvalidTransition
	}

	now := s.now().UTC()
	b.Status = StatusNoShow
	b.AppendNote(now, "marked no-show")

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) checkOperatingHours(day, startAt, endAt time.Time) error {
	openAt, err := atClock(day, s.cfg.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid open time config: %w", err)
	}
	closeAt, err := atClock(day, s.cfg.CloseTime)
	if err != nil {
		return fmt.Errorf("invalid close time config: %w", err)
	}

	if startAt.Before(openAt) || endAt.After(closeAt) {
		return ErrOutsideHours
	}
	return nil
}

// parseSlot normalizes the calendar date to UTC midnight and builds
// minute-granularity timestamps for the interval bounds.
func parseSlot(date, start, end string) (day, startAt, endAt time.Time, err error) {
	day, err = time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidDate
	}
	day = day.UTC()

	startAt, err = atClock(day, start)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidTimeFormat
	}
	endAt, err = atClock(day, end)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidTimeFormat
	}

	if !endAt.After(startAt) {
		return time.Time{}, time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
	return day, startAt, endAt, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func noteEntry(at time.Time, line string) string {
	return fmt.Sprintf("[%s] %s", at.UTC().Format("2006-01-02 15:04"), line)
}
