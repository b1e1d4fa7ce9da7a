package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/response"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/reward"
)

type Handler struct {
	service reward.Service
}

func NewHandler(service reward.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Wallet(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	ctx := c.Request.Context()

	customer, err := h.service.GetCustomer(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.service.ListLedger(ctx, id, 50)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewWalletResponse(customer, entries))
}
