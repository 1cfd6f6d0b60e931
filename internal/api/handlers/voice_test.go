package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/internal/engagement"
	"github.com/troikatech/call-bridge/internal/routing"
	"github.com/troikatech/call-bridge/pkg/env"
	"github.com/troikatech/call-bridge/pkg/hubspot"
)

func testConfig() *env.Config {
	return &env.Config{
		AppEnv:         "test",
		PublicBaseURL:  "https://bridge.example.com",
		VoiceLanguage:  "fr-FR",
		NoRouteMessage: "Personne n'est disponible pour prendre cet appel.",
	}
}

func newTestHandler(t *testing.T, cfg *env.Config, crmBaseURL string) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	directory, err := routing.NewDirectory(map[string]string{
		"janice@glive.ca": "+14506001665",
	})
	if err != nil {
		t.Fatalf("NewDirectory() error = %v", err)
	}

	var crm *hubspot.Client
	if crmBaseURL != "" {
		crm = hubspot.NewClient(crmBaseURL, "test-token", 2*time.Second, zap.NewNop())
	} else {
		crm = hubspot.NewClient("https://api.hubapi.com", "", 2*time.Second, zap.NewNop())
	}
	recorder := engagement.NewRecorder(crm, engagement.NewMemoryDedup(), zap.NewNop())

	return NewHandler(cfg, directory, recorder, nil, crm, nil, nil, zap.NewNop())
}

func newTestRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/voice", h.Voice)
	router.POST("/call-status", h.CallStatus)
	router.POST("/recording-callback", h.RecordingCallback)
	router.GET("/token", h.Token)
	return router
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVoiceOutboundFromSoftphone(t *testing.T) {
	h := newTestHandler(t, testConfig(), "")
	router := newTestRouter(h)

	form := url.Values{}
	form.Set("CallSid", "CA1")
	form.Set("From", "client:janice@glive.ca")
	form.Set("To", "+15145550123")
	form.Set("contactId", "c-42")
	form.Set("ownerId", "o-7")

	w := postForm(router, "/voice", form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Errorf("Content-Type = %q, want text/xml", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		`callerId="+14506001665"`,
		"<Number>+15145550123</Number>",
		"contactId=c-42",
		"ownerId=o-7",
		"https://bridge.example.com/call-status",
		"https://bridge.example.com/recording-callback",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q:\n%s", want, body)
		}
	}
}

func TestVoiceInbound(t *testing.T) {
	h := newTestHandler(t, testConfig(), "")
	router := newTestRouter(h)

	form := url.Values{}
	form.Set("CallSid", "CA2")
	form.Set("From", "+15145550123")
	form.Set("To", "+14506001665")

	w := postForm(router, "/voice", form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Client>janice@glive.ca</Client>") {
		t.Errorf("inbound call should ring the agent client:\n%s", body)
	}
	if !strings.Contains(body, "isIncoming=true") {
		t.Errorf("inbound callbacks should carry isIncoming:\n%s", body)
	}
	if !strings.Contains(body, "customerPhone=%2B15145550123") {
		t.Errorf("inbound callbacks should carry the caller number:\n%s", body)
	}
}

func TestVoiceBridgeLegDialsClientPhone(t *testing.T) {
	h := newTestHandler(t, testConfig(), "")
	router := newTestRouter(h)

	form := url.Values{}
	form.Set("CallSid", "CA3")
	form.Set("From", "+14506001665")
	form.Set("To", "+14506001665")

	w := postForm(router, "/voice?clientPhone=%2B15145550123&contactId=c-42", form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Number>+15145550123</Number>") {
		t.Errorf("bridge leg should dial the customer:\n%s", body)
	}
	if !strings.Contains(body, "contactId=c-42") {
		t.Errorf("bridge leg should propagate contactId:\n%s", body)
	}
}

func TestVoiceUnroutableSpeaksApology(t *testing.T) {
	h := newTestHandler(t, testConfig(), "")
	router := newTestRouter(h)

	form := url.Values{}
	form.Set("CallSid", "CA4")
	form.Set("From", "+15145550123")
	form.Set("To", "+19995550000") // not in the directory

	w := postForm(router, "/voice", form)

	// Never an error status: the platform would play its own failure
	// message over ours
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Personne n&#39;est disponible") {
		t.Errorf("missing spoken apology:\n%s", body)
	}
	if !strings.Contains(body, "<Hangup") {
		t.Errorf("missing hangup:\n%s", body)
	}
	if strings.Contains(body, "<Dial") {
		t.Errorf("unroutable call must not dial:\n%s", body)
	}
}

func TestVoiceIgnoresUndefinedQueryValues(t *testing.T) {
	h := newTestHandler(t, testConfig(), "")
	router := newTestRouter(h)

	form := url.Values{}
	form.Set("CallSid", "CA5")
	form.Set("From", "client:janice@glive.ca")
	form.Set("To", "+15145550123")

	w := postForm(router, "/voice?contactId=c-42&ownerId=undefined", form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "contactId=c-42") {
		t.Errorf("contactId should survive:\n%s", body)
	}
	if strings.Contains(body, "ownerId") {
		t.Errorf("literal undefined must be treated as absent:\n%s", body)
	}
}
