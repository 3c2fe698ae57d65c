// Package configapi is the HTTP client for the Aegis Config API.
package configapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/logging"
	"github.com/PlayerIUnknown/aegis-gui/internal/metrics"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryMax   = 2
	defaultScanLimit  = 200
	defaultRetryWait  = 500 * time.Millisecond
	defaultRetryLimit = 5 * time.Second
	maxBodySize       = 32 << 20 // 32 MiB
)

// APIError is a non-2xx response from the Config API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusCode lets HTTP error handlers map the failure without importing this package.
func (e *APIError) StatusCode() int {
	return e.Status
}

// IsUnauthorized reports whether err carries a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.HTTPClient.Timeout = d
		}
	}
}

// WithRetryMax sets how many times 429, 5xx and transport failures are retried.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.RetryMax = n
		}
	}
}

// WithRetryWait bounds the backoff between attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		if minWait > 0 {
			c.http.RetryWaitMin = minWait
		}
		if maxWait >= minWait && maxWait > 0 {
			c.http.RetryWaitMax = maxWait
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.Component(logger, "configapi")
		}
	}
}

// WithHTTPClient replaces the underlying client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTPClient = hc
		}
	}
}

// New creates a Config API client. baseURL is required; trailing slashes are trimmed.
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("config api base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse config api base URL: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: defaultTimeout}
	rc.RetryMax = defaultRetryMax
	rc.RetryWaitMin = defaultRetryWait
	rc.RetryWaitMax = defaultRetryLimit
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL: base,
		http:    rc,
		logger:  logging.Component(slog.Default(), "configapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Logger = c.logger
	return c, nil
}

// BaseURL is the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	err := c.do(ctx, "login", http.MethodPost, "/v1/login", "", body, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{
		"name":     strings.TrimSpace(name),
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	err := c.do(ctx, "register", http.MethodPost, "/v1/register", "", body, &out)
	return out, err
}

func (c *Client) DashboardSummary(ctx context.Context, token string) (DashboardSummary, error) {
	var out DashboardSummary
	err := c.do(ctx, "dashboard_summary", http.MethodGet, "/v1/dashboard/summary", token, nil, &out)
	return out, err
}

// Scans lists scans. limit <= 0 uses 200 and offset < 0 uses 0.
func (c *Client) Scans(ctx context.Context, token string, limit, offset int) (ScanListResponse, error) {
	if limit <= 0 {
		limit = defaultScanLimit
	}
	if offset < 0 {
		offset = 0
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out ScanListResponse
	err := c.do(ctx, "scans", http.MethodGet, "/v1/scans?"+q.Encode(), token, nil, &out)
	return out, err
}

func (c *Client) ScanDetails(ctx context.Context, token, scanID string) (ScanDetailsResponse, error) {
	scanID = strings.TrimSpace(scanID)
	if scanID == "" {
		return ScanDetailsResponse{}, errors.New("scan id is required")
	}
	var out ScanDetailsResponse
	err := c.do(ctx, "scan_details", http.MethodGet, "/v1/scans/"+url.PathEscape(scanID), token, nil, &out)
	return out, err
}

func (c *Client) TenantProfile(ctx context.Context, token string) (TenantProfile, error) {
	var out TenantProfile
	err := c.do(ctx, "tenant_profile", http.MethodGet, "/v1/tenant/profile", token, nil, &out)
	return out, err
}

func (c *Client) UpdateQualityGates(ctx context.Context, token string, update QualityGateUpdate) (QualityGateUpdateResponse, error) {
	var out QualityGateUpdateResponse
	err := c.do(ctx, "update_quality_gates", http.MethodPut, "/v1/tenant/quality-gates", token, update, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, endpoint, method, path, token string, in, out any) error {
	var payload any
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		payload = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", logging.AppName)
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ConfigAPIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ConfigAPIRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("config api request failed", "endpoint", endpoint, "err", err)
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.ConfigAPIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.Debug("config api error response", "endpoint", endpoint, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}
	if resp.StatusCode == http.StatusNoContent || out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	msg := fmt.Sprintf("Request failed with status %d", status)
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if detail, ok := payload["detail"]; ok {
			if text := detailText(detail); text != "" {
				msg = text
			}
		}
	}
	return &APIError{Status: status, Message: msg}
}

// detailText stringifies a FastAPI style detail: a string, a list of
// validation errors carrying "msg", or any other JSON value verbatim.
func detailText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if m := strings.TrimSpace(item.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}
