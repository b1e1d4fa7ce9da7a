package payment

import (
	"net/http"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/apperror"
)

var (
	ErrNotFound = apperror.New(http.StatusNotFound, "payment not found")

	// ErrStaleBooking means the booking moved out of the pending/unpaid
	// state between lookup and settle. The reconciler treats it as an
	// already-processed event.
	ErrStaleBooking = apperror.New(http.StatusConflict, "booking no longer pending")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Payment is the deposit record created alongside each booking and
// completed exactly once by the reconciler (or staff cash confirm).
// The external transaction id is the de-duplication key.
type Payment struct {
	ID            string
	BookingID     string
	Amount        int64
	Method        string
	Status        Status
	TransactionID string
	PaidAt        *time.Time
	CreatedAt     time.Time
}

// Event is a normalized payment confirmation from either entry point.
type Event struct {
	TransactionID string
	Amount        int64
	Description   string
	Method        string
	OccurredAt    time.Time
}

// Outcome classifies a reconciliation result. Every outcome is reported
// as success upstream; only transport and auth failures are not.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNoMatch   Outcome = "no_match"
)
