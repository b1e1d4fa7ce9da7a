package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/pricing")

	group.GET("/:category", h.Get)
	group.GET("/:category/quote", h.Quote)

	// Admin edits require staff auth and invalidate the rule cache.
	group.PUT("/:category", authMiddleware, h.Upsert)
}
