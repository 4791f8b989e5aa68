// Package remote provides a client for the optional key-value sync service
// that mirrors the prize list and draw history across wheel installations.
//
// The service is a plain JSON key-value API: the prize list lives under the
// "prizes" key and the history log under the "history" key, each as one JSON
// document. Requests are retried with exponential backoff on transient
// failures; client errors are terminal.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/shij-yuan/lucky-draw/internal/store"
)

const (
	prizesKey  = "prizes"
	historyKey = "history"
)

// ErrNotFound is returned when a key has never been written to the remote.
var ErrNotFound = errors.New("remote: key not found")

// Config holds configuration for the sync client.
type Config struct {
	// BaseURL is the root of the key-value service, e.g. "https://kv.example.com".
	BaseURL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// MaxRetries is the maximum number of retry attempts for retryable
	// errors. Defaults to 3 if zero.
	MaxRetries int

	// BaseRetryDelay is the initial backoff delay. Defaults to 500ms if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay. Defaults to 5s if zero.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header. Optional.
	UserAgent string
}

// Client is a sync-service client. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a sync client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 500 * time.Millisecond
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 5 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{cfg: cfg, http: httpClient}
}

// GetPrizes fetches the remote prize list.
func (c *Client) GetPrizes(ctx context.Context) ([]store.Prize, error) {
	var prizes []store.Prize
	if err := c.getJSON(ctx, prizesKey, &prizes); err != nil {
		return nil, err
	}
	return prizes, nil
}

// PutPrizes replaces the remote prize list.
func (c *Client) PutPrizes(ctx context.Context, prizes []store.Prize) error {
	return c.putJSON(ctx, prizesKey, prizes)
}

// GetDraws fetches the remote draw history, newest-first.
func (c *Client) GetDraws(ctx context.Context) ([]store.Draw, error) {
	var draws []store.Draw
	if err := c.getJSON(ctx, historyKey, &draws); err != nil {
		return nil, err
	}
	return draws, nil
}

// PutDraws replaces the remote draw history.
func (c *Client) PutDraws(ctx context.Context, draws []store.Draw) error {
	return c.putJSON(ctx, historyKey, draws)
}

// AppendDraw prepends one draw to the remote history. The service is a plain
// key-value store, so this is a read-modify-write of the history document; a
// missing key counts as an empty history.
func (c *Client) AppendDraw(ctx context.Context, draw store.Draw) error {
	draws, err := c.GetDraws(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	updated := make([]store.Draw, 0, len(draws)+1)
	updated = append(updated, draw)
	updated = append(updated, draws...)
	return c.PutDraws(ctx, updated)
}

// statusError carries an HTTP status for retryability classification.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d: %s", e.status, e.body)
}

func (c *Client) getJSON(ctx context.Context, key string, out interface{}) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.keyURL(key), nil)
		if err != nil {
			return err
		}
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		if err := classifyStatus(resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("remote: failed to decode %s: %w", key, err)
		}
		return nil
	})
}

func (c *Client) putJSON(ctx context.Context, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("remote: failed to encode %s: %w", key, err)
	}

	return c.withRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.keyURL(key), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		return classifyStatus(resp)
	})
}

func (c *Client) withRetry(ctx context.Context, fn retry.RetryFunc) error {
	backoff := retry.NewExponential(c.cfg.BaseRetryDelay)
	backoff = retry.WithCappedDuration(c.cfg.MaxRetryDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(c.cfg.MaxRetries), backoff)
	return retry.Do(ctx, backoff, fn)
}

func (c *Client) keyURL(key string) string {
	return fmt.Sprintf("%s/kv/%s", c.cfg.BaseURL, key)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

// classifyStatus converts a non-2xx response into an error. Server errors and
// rate limits are retryable; other client errors are terminal.
func classifyStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := &statusError{status: resp.StatusCode, body: string(bytes.TrimSpace(body))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return retry.RetryableError(err)
	}
	return err
}
