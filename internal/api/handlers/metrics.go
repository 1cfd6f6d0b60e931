package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/troikatech/call-bridge/pkg/metrics"
)

// GetMetrics returns application metrics as JSON
func (h *Handler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.GetMetrics())
}

// GetPrometheusMetrics returns metrics in Prometheus text format
func (h *Handler) GetPrometheusMetrics(c *gin.Context) {
	c.String(http.StatusOK, metrics.GetPrometheusMetrics())
}
