package http

// WebhookRequest is the push payload from the payment gateway. The
// reference code is embedded somewhere in the free-text description.
type WebhookRequest struct {
	StatusCode    string `json:"status_code" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Description   string `json:"description"`
}

// SyncRequest is the richer pull payload from the bank sync feed.
// TransType is a single-character flag: "C" credit, "D" debit.
type SyncRequest struct {
	TransactionID   string `json:"transaction_id" binding:"required"`
	Amount          int64  `json:"amount" binding:"required"`
	TransType       string `json:"trans_type" binding:"required,oneof=C D"`
	Content         string `json:"content"`
	TransactionTime int64  `json:"transaction_time"` // epoch milliseconds
}

// AckResponse is returned for every processed business outcome. The
// provider only sees non-200 for auth or malformed payloads.
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
