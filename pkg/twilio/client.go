package twilio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/troikatech/call-bridge/pkg/metrics"
)

const defaultBaseURL = "https://api.twilio.com"

// Client is a minimal Twilio Programmable Voice REST client
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client
}

func NewClient(accountSID, authToken string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake API
func NewClientWithBaseURL(baseURL, accountSID, authToken string) *Client {
	c := NewClient(accountSID, authToken)
	c.baseURL = baseURL
	return c
}

type CreateCallRequest struct {
	From string
	To   string
	// URL returning the TwiML to execute once the callee answers
	URL string
}

type CreateCallResponse struct {
	Sid       string `json:"sid"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
}

// CreateCall starts an outbound call leg via the Calls resource
func (c *Client) CreateCall(ctx context.Context, req CreateCallRequest) (*CreateCallResponse, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)

	data := url.Values{}
	data.Set("From", req.From)
	data.Set("To", req.To)
	data.Set("Url", req.URL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.SetBasicAuth(c.accountSID, c.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordServiceCall("twilio", false, time.Since(start))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordServiceCall("twilio", false, time.Since(start))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.RecordServiceCall("twilio", false, time.Since(start))
		return nil, fmt.Errorf("twilio API error: %s (status %d)", string(body), resp.StatusCode)
	}
	metrics.RecordServiceCall("twilio", true, time.Since(start))

	var result CreateCallResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
