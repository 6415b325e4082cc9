package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/contexta-ai/contexta/internal/logger"
)

// Delivery defaults. Retries apply to connection-level failures only; an
// HTTP error response is a permanent rejection by the receiver.
const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 2 * time.Second
	DefaultTimeout    = 5 * time.Second
)

// LookupFunc resolves a hostname. Swappable in tests.
type LookupFunc func(ctx context.Context, host string) ([]string, error)

// CallbackNotifier posts JSON payloads to ingestion callback URLs.
// Best-effort by contract: every failure is logged and swallowed, never
// returned, so ingestion outcomes stay independent of notification
// outcomes.
type CallbackNotifier struct {
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	lookupHost LookupFunc
	sleep      func(time.Duration)
}

// Option configures a CallbackNotifier.
type Option func(*CallbackNotifier)

// WithMaxRetries sets the delivery attempt limit.
func WithMaxRetries(n int) Option {
	return func(c *CallbackNotifier) { c.maxRetries = n }
}

// WithBackoff sets the backoff unit; attempt i waits i times this.
func WithBackoff(d time.Duration) Option {
	return func(c *CallbackNotifier) { c.backoff = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *CallbackNotifier) { c.client = client }
}

// WithLookup replaces the hostname resolver.
func WithLookup(fn LookupFunc) Option {
	return func(c *CallbackNotifier) { c.lookupHost = fn }
}

// NewCallbackNotifier returns a notifier with bounded retry.
func NewCallbackNotifier(opts ...Option) *CallbackNotifier {
	c := &CallbackNotifier{
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		lookupHost: func(ctx context.Context, host string) ([]string, error) {
			return net.DefaultResolver.LookupHost(ctx, host)
		},
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify delivers the payload to the callback URL.
//
// The target hostname is resolved once up front; a resolution failure
// aborts with zero delivery attempts. Connection-level failures are retried
// up to the attempt limit with linear-growing backoff (2s, 4s, 6s, ...). A
// 2xx response stops immediately; a 4xx/5xx response is treated as a
// permanent rejection and not retried.
func (c *CallbackNotifier) Notify(ctx context.Context, callbackURL string, payload interface{}) {
	target, err := url.Parse(callbackURL)
	if err != nil || target.Hostname() == "" {
		logger.Warn("Invalid callback URL %q, skipping notification", callbackURL)
		return
	}

	if _, err := c.lookupHost(ctx, target.Hostname()); err != nil {
		logger.Warn("Callback host %s did not resolve, skipping delivery: %v", target.Hostname(), err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Could not encode callback payload for %s: %v", callbackURL, err)
		return
	}

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
		if err != nil {
			logger.Warn("Could not build callback request for %s: %v", callbackURL, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			// Connection-level failure: the only retryable case.
			logger.Warn("Callback delivery attempt %d/%d to %s failed: %v", attempt, c.maxRetries, callbackURL, err)
			if attempt < c.maxRetries {
				c.sleep(time.Duration(attempt) * c.backoff)
			}
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Callback delivered to %s (status %d)", callbackURL, resp.StatusCode)
			return
		}

		logger.Warn("Callback to %s rejected with status %d, not retrying", callbackURL, resp.StatusCode)
		return
	}

	logger.Error("Callback delivery to %s exhausted %d attempts", callbackURL, c.maxRetries)
}
