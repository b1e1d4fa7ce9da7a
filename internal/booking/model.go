package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict      = apperror.New(http.StatusConflict, "time slot already booked")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidTimeFormat = apperror.New(http.StatusBadRequest, "time must be HH:MM in 24-hour format")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "date must be YYYY-MM-DD")
	ErrDurationTooShort  = apperror.New(http.StatusBadRequest, "booking must be at least 60 minutes")
	ErrOutsideHours      = apperror.New(http.StatusBadRequest, "booking is outside operating hours")
	ErrStartTimePast     = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrPartyTooLarge     = apperror.New(http.StatusBadRequest, "party size exceeds resource capacity")
	ErrResourceNotFound  = apperror.New(http.StatusNotFound, "resource not found")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "booking status does not allow this action")
	ErrAlreadyPaid       = apperror.New(http.StatusConflict, "booking deposit already paid")

	// ErrRefCodeTaken means a concurrent create on the same day won the
	// sequence number. Callers recount and retry; it never reaches HTTP.
	ErrRefCodeTaken = apperror.New(http.StatusConflict, "reference code already allocated")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// transitions is the full lifecycle table. Anything not listed is rejected;
// completed, cancelled and no_show are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusInProgress, StatusCancelled},
	StatusConfirmed: {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {
		StatusCompleted,
	},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OccupyingStatuses are the states that always block a slot,
// regardless of booking age. Fresh pending bookings also block,
// but only inside the hold window (see Repository.HasOverlap).
var OccupyingStatuses = []Status{StatusConfirmed, StatusInProgress, StatusCompleted}

// Booking is a time-bounded allocation of one resource. Rows are never
// deleted; every system-driven change appends a timestamped line to Note.
type Booking struct {
	ID         string
	RefCode    string
	ResourceID string

	// Date is the calendar day normalized to UTC midnight. StartTime and
	// EndTime are minute-granularity timestamps on that day.
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time

	PartySize int
	Status    Status

	EstimatedAmount int64
	DepositAmount   int64
	ActualAmount    int64

	ActualStartAt    *time.Time
	ActualEndAt      *time.Time
	DepositPaidAt    *time.Time
	PaymentStartedAt *time.Time
	TransactionID    string

	RewardIssued   int64
	RewardIssuedAt *time.Time

	CustomerID   string
	ContactName  string
	ContactPhone string

	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduledMinutes returns the booked duration in minutes.
func (b *Booking) ScheduledMinutes() int {
	return int(b.EndTime.Sub(b.StartTime) / time.Minute)
}

// AppendNote adds a timestamped audit line without overwriting history.
func (b *Booking) AppendNote(at time.Time, line string) {
	entry := fmt.Sprintf("[%s] %s", at.UTC().Format("2006-01-02 15:04"), line)
	if b.Note == "" {
		b.Note = entry
		return
	}
	b.Note += "\n" + entry
}

// Filter defines parameters for listing bookings.
type Filter struct {
	ResourceID string
	CustomerID string
	Status     string
	Date       *time.Time
	Page       int
	PageSize   int
}
