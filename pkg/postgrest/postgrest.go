// Package postgrest is a minimal client for PostgREST table endpoints, the
// REST surface hosted Postgres providers such as Supabase expose.
package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/JaimeStill/curioscore/pkg/formatting"
)

var (
	// ErrRequest indicates the request never produced an HTTP response.
	ErrRequest = errors.New("postgrest request failed")
	// ErrStatus indicates a non-2xx HTTP response.
	ErrStatus = errors.New("postgrest returned error status")
	// ErrDecode indicates the response body did not match the destination.
	ErrDecode = errors.New("decode postgrest response")
)

// APIError is the error document PostgREST returns alongside a non-2xx status.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	parts := []string{fmt.Sprintf("status %d", e.Status)}
	if e.Code != "" {
		parts = append(parts, "code "+e.Code)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Details != "" {
		parts = append(parts, e.Details)
	}
	if e.Hint != "" {
		parts = append(parts, "hint: "+e.Hint)
	}
	return strings.Join(parts, "; ")
}

func (e *APIError) Unwrap() error {
	return ErrStatus
}

// Client issues table reads and upserts against a PostgREST endpoint.
type Client struct {
	http *resty.Client
}

// New creates a Client authenticated with cfg.Key, sent both as the
// apikey header and as a bearer token.
func New(cfg *Config) *Client {
	r := resty.New().
		SetBaseURL(cfg.RestURL()).
		SetTimeout(cfg.TimeoutDuration()).
		SetHeader("apikey", cfg.Key).
		SetAuthToken(cfg.Key).
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Profile", cfg.Schema).
		SetHeader("Content-Profile", cfg.Schema)

	return &Client{http: r}
}

// Select runs q and decodes the returned rows into dest, which must be a
// pointer to a slice.
func (c *Client) Select(ctx context.Context, q *Query, dest any) error {
	rr, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.Values()).
		Get("/" + q.Table())
	if err != nil {
		return fmt.Errorf("%w: select %s: %w", ErrRequest, q.Table(), err)
	}

	return decode(rr, dest)
}

// Upsert inserts rows into table, merging on the onConflict column when a
// row with the same key already exists. The rows PostgREST reports as
// written are decoded into dest when dest is non-nil.
func (c *Client) Upsert(ctx context.Context, table string, rows any, onConflict string, dest any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody(rows)

	if onConflict != "" {
		req.SetQueryParam("on_conflict", onConflict)
	}

	rr, err := req.Post("/" + table)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %w", ErrRequest, table, err)
	}

	return decode(rr, dest)
}

func decode(rr *resty.Response, dest any) error {
	body := rr.Body()

	if rr.IsError() {
		apiErr := &APIError{Status: rr.StatusCode()}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = formatting.Abbreviate(strings.TrimSpace(string(body)), 500)
		}
		return apiErr
	}

	if dest == nil || len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
