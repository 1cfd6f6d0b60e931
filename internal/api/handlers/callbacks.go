package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/internal/correlate"
	"github.com/troikatech/call-bridge/internal/engagement"
	"github.com/troikatech/call-bridge/pkg/errors"
	"github.com/troikatech/call-bridge/pkg/webhook"
)

// recordTimeout bounds the CRM round trips done inside a callback. The
// platform times its webhooks out; we must answer well inside that.
const recordTimeout = 5 * time.Second

type statusCallbackRequest struct {
	CallSid        string `form:"CallSid"`
	CallStatus     string `form:"CallStatus"`
	DialCallStatus string `form:"DialCallStatus"`
	Direction      string `form:"Direction"`
	From           string `form:"From"`
	To             string `form:"To"`
	CallDuration   string `form:"CallDuration"`
	DialCallSid    string `form:"DialCallSid"`
}

type recordingCallbackRequest struct {
	CallSid           string `form:"CallSid"`
	RecordingSid      string `form:"RecordingSid"`
	RecordingURL      string `form:"RecordingUrl"`
	RecordingDuration string `form:"RecordingDuration"`
	RecordingStatus   string `form:"RecordingStatus"`
	From              string `form:"From"`
	To                string `form:"To"`
	Direction         string `form:"Direction"`
}

// CallStatus handles the platform's terminal call status callback and
// logs the call to the CRM. Always answers 200: the platform retries
// non-2xx responses and a retry cannot fix a CRM-side failure.
func (h *Handler) CallStatus(c *gin.Context) {
	if !h.verifySignature(c) {
		return
	}

	var req statusCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("malformed status callback", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	// The parent leg reports "completed" even when the dialed party
	// never picked up; the dial status carries the real outcome.
	status := req.DialCallStatus
	if status == "" {
		status = req.CallStatus
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	h.recorder.Record(ctx, engagement.CompletedCall{
		CallSid:   req.CallSid,
		Direction: req.Direction,
		From:      req.From,
		To:        req.To,
		Status:    status,
		Duration:  req.CallDuration,
	}, correlate.Decode(c.Request.URL.Query()))

	c.Status(http.StatusOK)
}

// RecordingCallback handles the recording-ready callback. The platform
// serves the recording media at the callback URL plus a format suffix.
func (h *Handler) RecordingCallback(c *gin.Context) {
	if !h.verifySignature(c) {
		return
	}

	var req recordingCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("malformed recording callback", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	recordingURL := req.RecordingURL
	if recordingURL != "" {
		recordingURL += ".mp3"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), recordTimeout)
	defer cancel()

	h.recorder.Record(ctx, engagement.CompletedCall{
		CallSid:      req.CallSid,
		Direction:    req.Direction,
		From:         req.From,
		To:           req.To,
		Status:       "completed",
		Duration:     req.RecordingDuration,
		RecordingURL: recordingURL,
	}, correlate.Decode(c.Request.URL.Query()))

	c.Status(http.StatusOK)
}

// verifySignature authenticates a platform webhook when signature
// validation is enabled. Returns false after writing the response.
func (h *Handler) verifySignature(c *gin.Context) bool {
	if !h.cfg.TwilioValidateSignature {
		return true
	}

	if err := c.Request.ParseForm(); err != nil {
		errors.BadRequest(c, "unreadable form body")
		return false
	}

	requestURL := h.publicBaseURL(c) + c.Request.URL.RequestURI()
	err := webhook.VerifyTwilioSignature(
		h.cfg.TwilioAuthToken,
		requestURL,
		c.Request.PostForm,
		c.GetHeader("X-Twilio-Signature"),
	)
	if err != nil {
		h.logger.Warn("webhook signature rejected",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		errors.Forbidden(c, "invalid webhook signature")
		return false
	}
	return true
}
