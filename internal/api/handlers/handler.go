package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/internal/engagement"
	"github.com/troikatech/call-bridge/internal/routing"
	"github.com/troikatech/call-bridge/pkg/env"
	"github.com/troikatech/call-bridge/pkg/hubspot"
	"github.com/troikatech/call-bridge/pkg/mongo"
	"github.com/troikatech/call-bridge/pkg/twilio"
)

// Handler holds the dependencies shared by all HTTP handlers
type Handler struct {
	cfg       *env.Config
	directory *routing.Directory
	recorder  *engagement.Recorder
	twilio    *twilio.Client
	hubspot   *hubspot.Client
	redis     *redis.Client
	mongo     *mongo.Client
	logger    *zap.Logger
}

func NewHandler(
	cfg *env.Config,
	directory *routing.Directory,
	recorder *engagement.Recorder,
	twilioClient *twilio.Client,
	hubspotClient *hubspot.Client,
	redisClient *redis.Client,
	mongoClient *mongo.Client,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		directory: directory,
		recorder:  recorder,
		twilio:    twilioClient,
		hubspot:   hubspotClient,
		redis:     redisClient,
		mongo:     mongoClient,
		logger:    logger,
	}
}

// publicBaseURL is the https origin the telephony platform reaches us at.
// Configured explicitly in production; falls back to the request Host so
// tunneled development setups work without extra config.
func (h *Handler) publicBaseURL(c *gin.Context) string {
	if h.cfg.PublicBaseURL != "" {
		return h.cfg.PublicBaseURL
	}
	return "https://" + c.Request.Host
}
