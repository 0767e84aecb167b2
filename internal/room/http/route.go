package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/rooms")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/types", h.ListTypes)
	group.GET("/available", h.Available)
	group.GET("/:id", h.Get)
	group.GET("/:id/photo", h.Photo)
	group.GET("/:id/photo/thumbnail", h.Thumbnail)

	// === Admin Routes ===
	admin := group.Group("", authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		admin.PUT("/:id/photo", h.UploadPhoto)
	}
}
