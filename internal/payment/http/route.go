package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/payments")

	// Both endpoints authenticate per-request: the webhook by body
	// signature, the sync feed by bearer token.
	group.POST("/webhook", h.Webhook)
	group.POST("/sync", h.Sync)
}
