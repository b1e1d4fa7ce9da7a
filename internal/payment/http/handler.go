package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/auth"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/payment"
)

const signatureHeader = "X-Webhook-Signature"

type Handler struct {
	reconciler *payment.Reconciler
	jwtManager *auth.JWTManager

	webhookSecret      []byte
	webhookSuccessCode string
}

func NewHandler(reconciler *payment.Reconciler, jwtManager *auth.JWTManager, webhookSecret, webhookSuccessCode string) *Handler {
	return &Handler{
		reconciler:         reconciler,
		jwtManager:         jwtManager,
		webhookSecret:      []byte(webhookSecret),
		webhookSuccessCode: webhookSuccessCode,
	}
}

// Webhook is the push entry point. The gateway signs the raw body with
// the shared secret; a bad signature is an auth failure (the only kind
// of failure the provider should retry).
func (h *Handler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader(signatureHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.StatusCode != h.webhookSuccessCode {
		// Non-success codes are acknowledged and dropped; retrying them
		// upstream would change nothing.
		c.JSON(http.StatusOK, AckResponse{Success: true, Message: "ignored: non-success status"})
		return
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), payment.Event{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ackFor(outcome))
}

// Sync is the pull entry point, authenticated with a signed bearer token
// rather than a payload signature.
func (h *Handler) Sync(c *gin.Context) {
	if _, err := auth.BearerClaims(c, h.jwtManager); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if req.TransType != "C" {
		c.JSON(http.StatusOK, AckResponse{Success: true, Message: "ignored: not a credit"})
		return
	}

	var occurredAt time.Time
	if req.TransactionTime > 0 {
		occurredAt = time.UnixMilli(req.TransactionTime).UTC()
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), payment.Event{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Description:   req.Content,
		OccurredAt:    occurredAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ackFor(outcome))
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func ackFor(outcome payment.Outcome) AckResponse {
	switch outcome {
	case payment.OutcomeConfirmed:
		return AckResponse{Success: true, Message: "payment confirmed"}
	case payment.OutcomeDuplicate:
		return AckResponse{Success: true, Message: "already processed"}
	default:
		return AckResponse{Success: true, Message: "no matching booking"}
	}
}
