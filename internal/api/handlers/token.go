package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/pkg/errors"
	"github.com/troikatech/call-bridge/pkg/twilio"
)

// Token mints a browser softphone access token for a directory agent.
// Unknown identities are refused: a token for an unlisted email would
// produce calls no caller number can be attached to.
func (h *Handler) Token(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		errors.BadRequest(c, "email query parameter is required")
		return
	}

	if _, ok := h.directory.NumberFor(email); !ok {
		errors.Forbidden(c, "email is not a registered agent")
		return
	}

	token, err := twilio.NewAccessToken(
		h.cfg.TwilioAccountSID,
		h.cfg.TwilioAPIKeySID,
		h.cfg.TwilioAPIKeySecret,
		email,
		twilio.VoiceGrant{
			OutgoingApplicationSID: h.cfg.TwiMLAppSID,
			IncomingAllow:          true,
		},
		time.Duration(h.cfg.TokenTTLMin)*time.Minute,
	)
	if err != nil {
		errors.InternalError(c, err, h.logger)
		return
	}

	h.logger.Info("softphone token issued", zap.String("identity", email))
	c.JSON(http.StatusOK, gin.H{"token": token, "identity": email})
}
