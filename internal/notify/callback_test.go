package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveAll(ctx context.Context, host string) ([]string, error) {
	return []string{"127.0.0.1"}, nil
}

func resolveNone(ctx context.Context, host string) ([]string, error) {
	return nil, errors.New("no such host")
}

func fastNotifier(opts ...Option) *CallbackNotifier {
	base := []Option{WithBackoff(time.Millisecond), WithLookup(resolveAll)}
	return NewCallbackNotifier(append(base, opts...)...)
}

func TestNotify_DeliversPayload(t *testing.T) {
	var got map[string]interface{}
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := fastNotifier()
	n.Notify(context.Background(), srv.URL, map[string]interface{}{
		"document_id":    1,
		"status":         "completed",
		"chunks_created": 3,
	})

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "completed", got["status"])
	assert.Equal(t, float64(3), got["chunks_created"])
}

func TestNotify_UnresolvableHostZeroAttempts(t *testing.T) {
	attempts := 0
	n := NewCallbackNotifier(
		WithLookup(resolveNone),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts++
			return nil, errors.New("should not be called")
		})}),
	)

	n.Notify(context.Background(), "http://definitely-not-a-real-host.invalid/cb", map[string]string{"status": "failed"})

	assert.Zero(t, attempts, "no delivery attempt may happen when DNS fails")
}

func TestNotify_HTTPErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	fastNotifier().Notify(context.Background(), srv.URL, map[string]string{"status": "failed"})

	assert.Equal(t, int32(1), calls.Load(), "4xx is a permanent rejection")
}

func TestNotify_ConnectionFailureRetriedUpToLimit(t *testing.T) {
	attempts := 0
	n := fastNotifier(
		WithMaxRetries(3),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			attempts++
			return nil, errors.New("connection refused")
		})}),
	)

	n.Notify(context.Background(), "http://127.0.0.1:1/cb", map[string]string{"status": "completed"})

	assert.Equal(t, 3, attempts)
}

func TestNotify_SuccessStopsRetrying(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the first connection to force one retry.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	fastNotifier(WithMaxRetries(3)).Notify(context.Background(), srv.URL, map[string]string{"status": "completed"})

	assert.Equal(t, int32(2), calls.Load())
}

func TestNotify_BackoffGrowsLinearly(t *testing.T) {
	var waits []time.Duration
	n := fastNotifier(
		WithMaxRetries(3),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("down")
		})}),
	)
	n.sleep = func(d time.Duration) { waits = append(waits, d) }

	n.Notify(context.Background(), "http://127.0.0.1:1/cb", nil)

	require.Len(t, waits, 2, "no sleep after the final attempt")
	assert.Equal(t, 1*time.Millisecond, waits[0])
	assert.Equal(t, 2*time.Millisecond, waits[1])
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
