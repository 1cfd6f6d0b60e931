package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/pkg/errors"
	"github.com/troikatech/call-bridge/pkg/logger"
	"github.com/troikatech/call-bridge/pkg/twilio"
	"github.com/troikatech/call-bridge/pkg/utils"
)

type clickToCallRequest struct {
	EmployeeEmail string `json:"employeeEmail" binding:"required"`
	ClientPhone   string `json:"clientPhone" binding:"required"`
	ContactID     string `json:"contactId"`
	OwnerID       string `json:"ownerId"`
}

// ClickToCall starts a phone-to-phone bridge: the platform first rings
// the agent's own number, then the TwiML at the callback URL dials the
// customer. The customer number rides on the callback URL so the second
// leg knows who to call and how to correlate it.
func (h *Handler) ClickToCall(c *gin.Context) {
	var req clickToCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, "employeeEmail and clientPhone are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.EmployeeEmail))
	agentNumber, ok := h.directory.NumberFor(email)
	if !ok {
		errors.Forbidden(c, "employeeEmail is not a registered agent")
		return
	}

	clientPhone := utils.NormalizePhone(req.ClientPhone)
	if !utils.ValidateE164(clientPhone) {
		errors.BadRequest(c, "clientPhone is not a valid phone number")
		return
	}

	q := url.Values{}
	q.Set("clientPhone", clientPhone)
	if req.ContactID != "" {
		q.Set("contactId", req.ContactID)
	}
	if req.OwnerID != "" {
		q.Set("ownerId", req.OwnerID)
	}
	voiceURL := h.publicBaseURL(c) + "/voice?" + q.Encode()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	call, err := h.twilio.CreateCall(ctx, twilio.CreateCallRequest{
		From: agentNumber,
		To:   agentNumber,
		URL:  voiceURL,
	})
	if err != nil {
		h.logger.Error("click-to-call failed",
			zap.String("agent", email),
			logger.MaskPhone("clientPhone", clientPhone),
			zap.Error(err))
		errors.BadGateway(c, "telephony platform rejected the call")
		return
	}

	h.logger.Info("click-to-call started",
		zap.String("agent", email),
		zap.String("callSid", call.Sid),
		logger.MaskPhone("clientPhone", clientPhone))

	c.JSON(http.StatusOK, gin.H{
		"callSid": call.Sid,
		"status":  call.Status,
	})
}
