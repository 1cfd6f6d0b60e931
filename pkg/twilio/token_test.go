package twilio

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessToken(t *testing.T) {
	signed, err := NewAccessToken("AC123", "SK456", "topsecret", "janice@glive.ca",
		VoiceGrant{OutgoingApplicationSID: "AP789", IncomingAllow: true},
		time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("topsecret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}

	if cty := token.Header["cty"]; cty != "twilio-fpa;v=1" {
		t.Errorf("cty header = %v, want twilio-fpa;v=1", cty)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["iss"] != "SK456" {
		t.Errorf("iss = %v, want the API key sid", claims["iss"])
	}
	if claims["sub"] != "AC123" {
		t.Errorf("sub = %v, want the account sid", claims["sub"])
	}

	exp, _ := claims.GetExpirationTime()
	iat, _ := claims.GetIssuedAt()
	if got := exp.Sub(iat.Time); got != time.Hour {
		t.Errorf("token lifetime = %v, want 1h", got)
	}

	grants := claims["grants"].(map[string]interface{})
	if grants["identity"] != "janice@glive.ca" {
		t.Errorf("grants identity = %v", grants["identity"])
	}
	voice := grants["voice"].(map[string]interface{})
	outgoing := voice["outgoing"].(map[string]interface{})
	if outgoing["application_sid"] != "AP789" {
		t.Errorf("application_sid = %v", outgoing["application_sid"])
	}
	incoming := voice["incoming"].(map[string]interface{})
	if incoming["allow"] != true {
		t.Errorf("incoming allow = %v", incoming["allow"])
	}
}

func TestNewAccessTokenRequiresCredentials(t *testing.T) {
	if _, err := NewAccessToken("", "SK456", "secret", "x", VoiceGrant{}, time.Hour); err == nil {
		t.Error("expected error without account sid")
	}
	if _, err := NewAccessToken("AC123", "SK456", "", "x", VoiceGrant{}, time.Hour); err == nil {
		t.Error("expected error without API key secret")
	}
}
