package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// Customer-facing
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.POST("/:id/payment-started", h.MarkPaymentStarted)

	// Staff actions
	staff := group.Group("")
	staff.Use(authMiddleware)
	{
		staff.GET("", h.List)
		staff.POST("/:id/confirm-cash", h.ConfirmCash)
		staff.POST("/:id/check-in", h.CheckIn)
		staff.POST("/:id/check-out", h.CheckOut)
		staff.POST("/:id/cancel", h.Cancel)
		staff.POST("/:id/no-show", h.MarkNoShow)
	}
}
