// Package openrouter is a small client for OpenRouter-compatible
// chat-completions gateways with structured (JSON schema) output.
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/JaimeStill/curioscore/pkg/formatting"
)

// Sentinel errors for gateway calls.
var (
	// ErrRequest indicates the request never produced an HTTP response.
	ErrRequest = errors.New("chat completion request failed")
	// ErrStatus indicates a non-2xx HTTP response.
	ErrStatus = errors.New("chat completion returned error status")
	// ErrAPI indicates the response body carried an "error" object.
	ErrAPI = errors.New("chat completion api error")
	// ErrDecode indicates the response body was not valid JSON.
	ErrDecode = errors.New("decode chat completion response")
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchema describes a strict structured-output contract.
type JSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// ResponseFormat selects the output mode of the completion.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// Plugin enables a gateway-side plugin such as web search.
type Plugin struct {
	ID         string `json:"id"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Request is the chat-completions request body. Zero Model and nil
// Temperature fall back to the client configuration.
type Request struct {
	Model          string          `json:"model"`
	Temperature    *float64        `json:"temperature,omitempty"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Plugins        []Plugin        `json:"plugins,omitempty"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost,omitempty"`
}

// Choice is one generated alternative.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Response is the decoded chat-completions response.
type Response struct {
	ID        string          `json:"id,omitempty"`
	Model     string          `json:"model,omitempty"`
	Choices   []Choice        `json:"choices"`
	Usage     *Usage          `json:"usage,omitempty"`
	TotalCost *float64        `json:"total_cost,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// Content returns the first choice's message content, or "" when there are no choices.
func (r *Response) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

// Client sends chat-completion requests with bounded retries.
type Client struct {
	cfg  Config
	http *resty.Client
}

// New creates a Client. Transport errors, HTTP 429 and 5xx responses are
// retried up to cfg.MaxRetries times with exponential backoff between
// RetryWait and RetryMaxWait.
func New(cfg *Config) *Client {
	r := resty.New().
		SetTimeout(cfg.TimeoutDuration()).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWaitDuration()).
		SetRetryMaxWaitTime(cfg.RetryMaxWaitDuration()).
		AddRetryCondition(retryable).
		SetHeader("Content-Type", "application/json")

	if cfg.APIKey != "" {
		r.SetAuthToken(cfg.APIKey)
	}
	if cfg.SiteURL != "" {
		r.SetHeader("HTTP-Referer", cfg.SiteURL)
	}
	if cfg.SiteName != "" {
		r.SetHeader("X-Title", cfg.SiteName)
	}

	return &Client{cfg: *cfg, http: r}
}

// Model returns the configured default model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends req and returns the decoded response. A body with an
// "error" key is reported as ErrAPI even when the status is 2xx.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	if req.Temperature == nil {
		t := c.cfg.Temperature
		req.Temperature = &t
	}
	if c.cfg.WebSearch && len(req.Plugins) == 0 {
		req.Plugins = []Plugin{{ID: "web", MaxResults: c.cfg.WebMaxResults}}
	}

	rr, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	var resp Response
	decodeErr := json.Unmarshal(rr.Body(), &resp)

	if decodeErr == nil && hasError(resp.Error) {
		return nil, fmt.Errorf("%w: %s", ErrAPI, formatting.Abbreviate(string(resp.Error), 500))
	}
	if rr.IsError() {
		return nil, fmt.Errorf("%w: %s; body: %s", ErrStatus, rr.Status(), formatting.Abbreviate(rr.String(), 500))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, decodeErr)
	}

	return &resp, nil
}

func hasError(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

func retryable(r *resty.Response, err error) bool {
	if err != nil || r == nil {
		return err != nil
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
