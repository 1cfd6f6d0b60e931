package twilio

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// VoiceGrant allows a browser softphone to place and receive calls
type VoiceGrant struct {
	OutgoingApplicationSID string
	IncomingAllow          bool
}

// NewAccessToken mints a Twilio access token (first-person auth JWT) for a
// browser softphone identity. The token is signed with the API key secret
// and carries a voice grant bound to the TwiML application.
func NewAccessToken(accountSID, apiKeySID, apiKeySecret, identity string, grant VoiceGrant, ttl time.Duration) (string, error) {
	if accountSID == "" || apiKeySID == "" || apiKeySecret == "" {
		return "", fmt.Errorf("twilio API key credentials are not configured")
	}

	now := time.Now()

	voice := map[string]interface{}{}
	if grant.OutgoingApplicationSID != "" {
		voice["outgoing"] = map[string]interface{}{
			"application_sid": grant.OutgoingApplicationSID,
		}
	}
	if grant.IncomingAllow {
		voice["incoming"] = map[string]interface{}{
			"allow": true,
		}
	}

	claims := jwt.MapClaims{
		"jti": apiKeySID + "-" + uuid.NewString(),
		"iss": apiKeySID,
		"sub": accountSID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"grants": map[string]interface{}{
			"identity": identity,
			"voice":    voice,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"

	signed, err := token.SignedString([]byte(apiKeySecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
