package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves the static system endpoints.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Root)
	r.GET("/about", h.About)
}

// Root doubles as the liveness endpoint.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Patient management system",
	})
}

func (h *Handler) About(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "A fully functional patient management system",
	})
}
