package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pkg/response"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/pricing"
	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
)

type Handler struct {
	service pricing.Service
}

func NewHandler(service pricing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	category := resource.Category(c.Param("category"))
	if !category.Valid() {
		response.Error(c, resource.ErrInvalidCategory)
		return
	}

	rule, err := h.service.RuleFor(c.Request.Context(), category)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRuleResponse(rule))
}

func (h *Handler) Quote(c *gin.Context) {
	category := resource.Category(c.Param("category"))
	if !category.Valid() {
		response.Error(c, resource.ErrInvalidCategory)
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	quote, err := h.service.QuoteFor(c.Request.Context(), category, req.PartySize, req.DurationMinutes)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Category: string(category),
		Estimate: quote.Estimate,
		Deposit:  quote.Deposit,
	})
}

func (h *Handler) Upsert(c *gin.Context) {
	category := resource.Category(c.Param("category"))
	if !category.Valid() {
		response.Error(c, resource.ErrInvalidCategory)
		return
	}

	var body UpsertRuleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	plan, err := body.Plan()
	if err != nil {
		response.Error(c, err)
		return
	}

	rule, err := h.service.Upsert(c.Request.Context(), pricing.UpsertRequest{
		Category:    category,
		Plan:        plan,
		RewardCoins: body.RewardCoins,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRuleResponse(rule))
}
