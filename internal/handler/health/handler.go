package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agendahub/agenda-api/internal/storage"
)

type Handler struct {
	storage *storage.Storage
}

func NewHandler(storage *storage.Storage) *Handler {
	return &Handler{storage: storage}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
		health.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// ReadinessCheck probes the active storage tier. In demo mode there is
// nothing to reach, so it always answers UP.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.storage.Ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"mode":   string(h.storage.Mode),
			"reason": "storage backend unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"mode":   string(h.storage.Mode),
	})
}
