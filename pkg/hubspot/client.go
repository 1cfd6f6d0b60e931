package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/pkg/circuitbreaker"
	"github.com/troikatech/call-bridge/pkg/metrics"
	"github.com/troikatech/call-bridge/pkg/retry"
)

// Client talks to the HubSpot CRM API using a private app access token.
// Contact search (read-only) is retried behind a circuit breaker;
// engagement creation is a single best-effort attempt so a platform-side
// webhook redelivery can never be amplified into extra writes.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	logger      *zap.Logger
}

func NewClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		breaker:     circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:      logger,
	}
}

// IsConfigured reports whether an access token is present
func (c *Client) IsConfigured() bool {
	return c.accessToken != ""
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
	Limit        int           `json:"limit"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// SearchContactByPhone finds a contact by exact phone match.
// Returns an empty id (not an error) when no contact matches.
func (c *Client) SearchContactByPhone(ctx context.Context, phone string) (string, error) {
	reqBody := searchRequest{
		FilterGroups: []filterGroup{
			{Filters: []filter{{PropertyName: "phone", Operator: "EQ", Value: phone}}},
		},
		Properties: []string{"phone"},
		Limit:      1,
	}

	var result searchResponse

	start := time.Now()
	err := c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, retry.DefaultConfig(), func() error {
			return c.doJSON(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", reqBody, &result)
		})
	})
	latency := time.Since(start)
	metrics.RecordServiceCall("hubspot_search", err == nil, latency)
	metrics.UpdateCircuitBreaker("hubspot", c.breaker.GetState().String(), int64(c.breaker.Failures()))
	if err != nil {
		return "", fmt.Errorf("contact search failed: %w", err)
	}

	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].ID, nil
}

// Engagement describes one logged call
type Engagement struct {
	ContactID      string
	OwnerID        string
	Direction      string // INBOUND or OUTBOUND
	FromNumber     string
	ToNumber       string
	DurationMs     int64
	Outcome        string
	RecordingURL   string
	ExternalCallID string
}

type engagementResponse struct {
	Engagement struct {
		ID json.Number `json:"id"`
	} `json:"engagement"`
}

// CreateCallEngagement writes a single CALL engagement. One attempt only.
func (c *Client) CreateCallEngagement(ctx context.Context, e Engagement) (string, error) {
	engagement := map[string]interface{}{
		"type":      "CALL",
		"timestamp": time.Now().UnixMilli(),
	}
	if e.OwnerID != "" {
		engagement["ownerId"] = e.OwnerID
	}

	associations := map[string]interface{}{}
	if e.ContactID != "" {
		associations["contactIds"] = []string{e.ContactID}
	}

	metadata := map[string]interface{}{
		"status":               e.Outcome,
		"durationMilliseconds": e.DurationMs,
		"fromNumber":           e.FromNumber,
		"toNumber":             e.ToNumber,
		"callDirection":        e.Direction,
		"externalId":           e.ExternalCallID,
		"body":                 engagementBody(e),
	}
	if e.RecordingURL != "" {
		metadata["recordingUrl"] = e.RecordingURL
	}

	payload := map[string]interface{}{
		"engagement":   engagement,
		"associations": associations,
		"metadata":     metadata,
	}

	var result engagementResponse

	start := time.Now()
	err := c.doJSON(ctx, http.MethodPost, "/engagements/v1/engagements", payload, &result)
	metrics.RecordServiceCall("hubspot_engagement", err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("engagement create failed: %w", err)
	}

	return result.Engagement.ID.String(), nil
}

func engagementBody(e Engagement) string {
	body := fmt.Sprintf("Call details:<br>- Direction: %s<br>- From: %s<br>- To: %s<br>- Duration: %d ms<br>- Outcome: %s",
		e.Direction, e.FromNumber, e.ToNumber, e.DurationMs, e.Outcome)
	if e.RecordingURL != "" {
		body += fmt.Sprintf(`<br>- Recording: <a href="%s" target="_blank">Listen</a>`, e.RecordingURL)
	}
	return body
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("hubspot API error: %s (status %d)", string(body), resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
