// ABOUTME: Ollama /api/generate client used as the free-form health coach.
// ABOUTME: Builds a context + history prompt and asks for a short non-streamed reply.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "llama3.2"
	DefaultMaxTokens = 150

	// SystemInstruction keeps replies short.
	SystemInstruction = "You are a helpful AI health coach. Keep your answers brief and to the point " +
		"(under 100 words). Do not include extra commentary unless asked."

	// NoResponse is returned when the server answers without text.
	NoResponse = "Sorry, I couldn't generate a response."
)

// Request is one question for the assistant.
type Request struct {
	Prompt  string
	Context string
	History []Turn
}

// Client talks to an Ollama server.
type Client struct {
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens sets num_predict.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      DefaultModel,
		maxTokens:  DefaultMaxTokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateOptions struct {
	NumPredict int `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// BuildPrompt renders the context, prior turns and the new question.
func BuildPrompt(req Request) string {
	var b strings.Builder
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", req.Context)
	}
	for _, t := range req.History {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", t.User, t.Assistant)
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", req.Prompt)
	return b.String()
}

// Generate asks the model for a reply.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  BuildPrompt(req),
		System:  SystemInstruction,
		Stream:  false,
		Options: generateOptions{NumPredict: c.maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}

	c.logger.Debug("assistant reply",
		zap.String("model", c.model),
		zap.Int("history", len(req.History)),
		zap.Duration("took", time.Since(start)))

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return NoResponse, nil
	}
	return text, nil
}
