package http

import (
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/booking"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/request"
)

type CreateBookingRequest struct {
	ResourceID   string `json:"resource_id" binding:"required,uuid"`
	Date         string `json:"date" binding:"required"`
	Start        string `json:"start" binding:"required"`
	End          string `json:"end" binding:"required"`
	PartySize    int    `json:"party_size" binding:"required,min=1"`
	CustomerID   string `json:"customer_id" binding:"omitempty,uuid"`
	ContactName  string `json:"contact_name" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ListBookingsRequest struct {
	request.ListParams
	ResourceID string `form:"resource_id" binding:"omitempty,uuid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed in_progress completed cancelled no_show"`
	Date       string `form:"date"`
}

type BookingResponse struct {
	ID         string `json:"id"`
	RefCode    string `json:"ref_code"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	PartySize  int    `json:"party_size"`
	Status     string `json:"status"`

	EstimatedAmount int64 `json:"estimated_amount"`
	DepositAmount   int64 `json:"deposit_amount"`
	ActualAmount    int64 `json:"actual_amount,omitempty"`

	ActualStartAt *time.Time `json:"actual_start_at,omitempty"`
	ActualEndAt   *time.Time `json:"actual_end_at,omitempty"`
	DepositPaidAt *time.Time `json:"deposit_paid_at,omitempty"`

	RewardIssued int64 `json:"reward_issued,omitempty"`

	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		RefCode:         b.RefCode,
		ResourceID:      b.ResourceID,
		Date:            b.Date.Format("2006-01-02"),
		Start:           b.StartTime.Format("15:04"),
		End:             b.EndTime.Format("15:04"),
		PartySize:       b.PartySize,
		Status:          string(b.Status),
		EstimatedAmount: b.EstimatedAmount,
		DepositAmount:   b.DepositAmount,
		ActualAmount:    b.ActualAmount,
		ActualStartAt:   b.ActualStartAt,
		ActualEndAt:     b.ActualEndAt,
		DepositPaidAt:   b.DepositPaidAt,
		RewardIssued:    b.RewardIssued,
		ContactName:     b.ContactName,
		ContactPhone:    b.ContactPhone,
		Note:            b.Note,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// CheckInResponse carries the booking plus the non-blocking warning.
type CheckInResponse struct {
	Booking BookingResponse `json:"booking"`
	Warning string          `json:"warning,omitempty"`
}

// CheckOutResponse includes the remaining amount due after deposit.
type CheckOutResponse struct {
	Booking   BookingResponse `json:"booking"`
	Remaining int64           `json:"remaining_amount"`
}
