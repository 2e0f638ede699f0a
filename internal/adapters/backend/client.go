package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/sitescope/internal/domain/model"
	"github.com/okian/sitescope/pkg/logger"
	"github.com/okian/sitescope/pkg/metrics"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 250 * time.Millisecond
	maxResponseBytes  = 8 << 20
	backendLabelHTTP  = "http"
)

// HTTPOption applies a configuration option to the HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times a failed attempt is retried.
func WithRetries(n int) HTTPOption {
	return func(c *HTTPClient) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the base delay between attempts. It doubles on each
// retry.
func WithRetryDelay(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d >= 0 {
			c.retryDelay = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l logger.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// HTTPClient posts chat requests as JSON to a backend URL.
type HTTPClient struct {
	url        string
	http       *http.Client
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	logger     logger.Logger
}

// NewHTTPClient creates a client for url.
func NewHTTPClient(url string, opts ...HTTPOption) (*HTTPClient, error) {
	if url == "" {
		return nil, ErrNoBackendURL
	}
	c := &HTTPClient{
		url:        url,
		http:       &http.Client{},
		timeout:    defaultTimeout,
		retries:    1,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("backend")
	}
	return c, nil
}

// Respond sends req and decodes the answer. Transport errors and 5xx
// statuses are retried; 4xx statuses and undecodable bodies are not.
func (c *HTTPClient) Respond(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.ChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}
	requestID := uuid.NewString()

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Warn(ctx, "retrying backend call",
				logger.String("request_id", requestID),
				logger.Int("attempt", attempt),
				logger.Error(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return model.ChatResponse{}, c.fail(ctx.Err(), start)
			}
		}

		resp, retry, err := c.attempt(ctx, requestID, body)
		if err == nil {
			metrics.RecordBackendRequest(backendLabelHTTP, "ok")
			metrics.RecordBackendLatency(backendLabelHTTP, float64(time.Since(start).Milliseconds()))
			return resp, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return model.ChatResponse{}, c.fail(lastErr, start)
}

func (c *HTTPClient) fail(err error, start time.Time) error {
	metrics.RecordBackendRequest(backendLabelHTTP, "error")
	metrics.RecordBackendLatency(backendLabelHTTP, float64(time.Since(start).Milliseconds()))
	metrics.RecordErrorByComponent("backend", "request_failed")
	return err
}

// attempt performs one call. retry reports whether a failure is transient.
func (c *HTTPClient) attempt(ctx context.Context, requestID string, body []byte) (model.ChatResponse, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.ChatResponse{}, false, fmt.Errorf("build backend request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.ChatResponse{}, true, fmt.Errorf("call backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.ChatResponse{}, true, fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.ChatResponse{}, resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("%w: %s", ErrBackendStatus, strconv.Itoa(resp.StatusCode))
	}

	var out model.ChatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return model.ChatResponse{}, false, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return out, false, nil
}
