// File: internal/webhook/webhook.go

// Package webhook talks to an external collaborator/email endpoint. Flows use
// it to push findings out-of-band or to poll for data (confirmation codes,
// email bodies) they need to continue.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TimeoutError reports that no data arrived within the polling window.
// The calling flow decides whether that is fatal or merely logged.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("webhook %q produced no data within %s", e.Endpoint, e.Timeout)
}

// Client is a thin send/poll client against one opaque endpoint address.
// The payload format is flow-specific, not fixed here.
type Client struct {
	endpoint string
	interval time.Duration
	httpc    *http.Client
	logger   *zap.Logger
}

// New creates a Client for the given endpoint. interval is the polling cadence.
func New(logger *zap.Logger, endpoint string, interval time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		interval: interval,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		logger:   logger.Named("webhook"),
	}
}

// Endpoint returns the collaborator address this client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send pushes a JSON payload to the endpoint.
func (c *Client) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cannot build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("webhook send failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook send failed: endpoint returned %s", resp.Status)
	}

	c.logger.Debug("Webhook payload delivered", zap.Int("bytes", len(body)))
	return nil
}

// Poll repeatedly fetches the endpoint until it returns a non-empty body or
// the timeout elapses with a TimeoutError.
func (c *Client) Poll(ctx context.Context, timeout time.Duration) ([]byte, error) {
	c.logger.Info("Waiting for webhook data to arrive",
		zap.String("endpoint", c.endpoint),
		zap.Duration("timeout", timeout),
	)

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		data, err := c.fetch(pollCtx)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil && pollCtx.Err() == nil {
			c.logger.Debug("Webhook poll attempt failed", zap.Error(err))
		}

		select {
		case <-ticker.C:
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				// The caller was cancelled, not the polling window.
				return nil, ctx.Err()
			}
			return nil, &TimeoutError{Endpoint: c.endpoint, Timeout: timeout}
		}
	}
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
