package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes ===
	group.GET("/confirmation/:code", h.GetByConfirmationCode)

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.POST("/rooms/:id", h.Create)
		authed.GET("/guests/:email", h.ListByGuestEmail)
		authed.GET("/mine", h.ListMine)
		authed.DELETE("/:id", h.Cancel)
	}

	// === Admin Routes ===
	authed.GET("", adminMiddleware, h.ListAll)
	g.GET("/rooms/:id/bookings", authMiddleware, adminMiddleware, h.ListForRoom)
}
