package scenariorun

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var errBackpressure = errors.New("backpressure")

// client wraps http.Client with a per-request timeout.
type client struct {
	hc      *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{hc: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errBackpressure
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s: %d", ErrStatus, req.Method, req.URL.Path, resp.StatusCode)
	case out == nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// submitUpdates posts payloads concurrently and returns one submission per
// payload, in payload order.
func submitUpdates(ctx context.Context, cfg *Config, c *client, payloads []Payload, stats *Stats) []submission {
	out := make([]submission, len(payloads))
	var applied, rejected, failed int64

	indexes := make(chan int, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					out[i].err = ctx.Err()
					atomic.AddInt64(&failed, 1)
					continue
				}
				s := submission{payload: payloads[i]}
				s.err = c.post(ctx, "/api/map", payloads[i], &s.result)
				switch {
				case errors.Is(s.err, errBackpressure):
					atomic.AddInt64(&rejected, 1)
				case s.err != nil:
					atomic.AddInt64(&failed, 1)
				case s.result.Applied:
					atomic.AddInt64(&applied, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				out[i] = s
			}
		}()
	}

	for i := range payloads {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	stats.Submitted = len(payloads)
	stats.Applied = int(applied)
	stats.Rejected = int(rejected)
	stats.Failed = int(failed)
	return out
}
