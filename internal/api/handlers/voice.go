package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/internal/correlate"
	"github.com/troikatech/call-bridge/internal/routing"
	"github.com/troikatech/call-bridge/internal/twiml"
	"github.com/troikatech/call-bridge/pkg/errors"
	"github.com/troikatech/call-bridge/pkg/logger"
)

// voiceRequest is the platform's call-control webhook. Correlation data
// may ride on the form body (browser softphone custom params) or on the
// query string (bridge legs we initiated ourselves).
type voiceRequest struct {
	CallSid   string `form:"CallSid"`
	From      string `form:"From"`
	To        string `form:"To"`
	ContactID string `form:"contactId"`
	OwnerID   string `form:"ownerId"`
}

// Voice answers the platform's call-control webhook with the TwiML for
// the next step of the call. A call with no route gets a spoken apology,
// never an error status: a non-2xx here would play the platform's own
// failure message to the caller.
func (h *Handler) Voice(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("malformed voice webhook", zap.Error(err))
	}

	corr := correlate.Decode(c.Request.URL.Query())
	if req.ContactID == "" {
		req.ContactID = corr.ContactID
	}
	if req.OwnerID == "" {
		req.OwnerID = corr.OwnerID
	}

	cc := routing.Resolve(routing.WebhookInput{
		From:        req.From,
		To:          req.To,
		ContactID:   req.ContactID,
		OwnerID:     req.OwnerID,
		ClientPhone: c.Query("clientPhone"),
	}, h.directory)

	h.logger.Info("call resolved",
		zap.String("callSid", req.CallSid),
		zap.String("direction", cc.Direction.String()),
		zap.String("agent", cc.AgentIdentity),
		logger.MaskPhone("from", req.From),
		logger.MaskPhone("to", req.To),
	)

	doc := routing.BuildResponse(cc, routing.BuildParams{
		BaseURL:  h.publicBaseURL(c),
		Language: h.cfg.VoiceLanguage,
		Message:  h.cfg.NoRouteMessage,
	})

	body, err := doc.Render()
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}
	c.Data(http.StatusOK, twiml.ContentType, body)
}
