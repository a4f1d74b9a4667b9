// ABOUTME: HTTP client for the Ultrahuman partner daily_metrics endpoint.
// ABOUTME: Returns the raw JSON payload for one calendar date.
package ultrahuman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Ultrahuman partner API host.
const DefaultBaseURL = "https://partner.ultrahuman.com"

const dailyMetricsPath = "/api/v1/partner/daily_metrics"

// ErrMissingToken is returned when no API token is configured.
var ErrMissingToken = errors.New("ULTRAHUMAN_TOKEN not found in environment or config")

// Client fetches daily metrics from the partner API.
type Client struct {
	baseURL    string
	token      string
	email      string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API host.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithEmail sets the optional account email query parameter.
func WithEmail(email string) ClientOption {
	return func(c *Client) { c.email = email }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client. An empty token fails with ErrMissingToken.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchDailyMetrics returns the raw response body for date. Non-200 responses
// and bodies without a "data" key are errors.
func (c *Client) FetchDailyMetrics(ctx context.Context, date time.Time) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("date", models.FormatDate(date))
	if c.email != "" {
		params.Set("email", c.email)
	}
	endpoint := c.baseURL + dailyMetricsPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daily metrics %s: %w", models.FormatDate(date), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if _, ok := envelope["data"]; !ok {
		return nil, fmt.Errorf("unexpected API response format: missing data")
	}

	c.logger.Debug("fetched daily metrics",
		zap.String("date", models.FormatDate(date)),
		zap.Int("bytes", len(body)))
	return json.RawMessage(body), nil
}
