package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Ping is a trivial liveness probe
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health reports dependency status. Degraded dependencies do not flip
// the overall status: the service keeps answering webhooks without them.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}

	redisStatus := "ok"
	if err := h.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unreachable"
	}
	deps["redis"] = redisStatus

	if h.mongo != nil {
		mongoStatus := "ok"
		if err := h.mongo.Ping(ctx); err != nil {
			mongoStatus = "unreachable"
		}
		deps["mongodb"] = mongoStatus
	}

	hubspotStatus := "not configured"
	if h.hubspot != nil && h.hubspot.IsConfigured() {
		hubspotStatus = "configured"
	}
	deps["hubspot"] = hubspotStatus

	twilioStatus := "not configured"
	if h.cfg.TwilioAccountSID != "" && h.cfg.TwilioAuthToken != "" {
		twilioStatus = "configured"
	}
	deps["twilio"] = twilioStatus

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"environment":  h.cfg.AppEnv,
		"agents":       h.directory.Len(),
		"dependencies": deps,
	})
}
