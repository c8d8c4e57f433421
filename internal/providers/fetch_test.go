package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(proxies ...string) (*Fetcher, *[]time.Duration) {
	f := NewFetcher(FetcherConfig{Proxies: proxies, BaseDelay: 100 * time.Millisecond})
	var delays []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	f.jitter = func(time.Duration) time.Duration { return 0 }
	return f, &delays
}

func TestFetcher_FallsThroughProxyChain(t *testing.T) {
	var direct, proxy1, proxy2 int32
	mux := http.NewServeMux()
	mux.HandleFunc("/direct", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&direct, 1)
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/proxy1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&proxy1, 1)
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/proxy2", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&proxy2, 1)
		assert.Contains(t, r.URL.Query().Get("url"), "/direct")
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f, delays := newTestFetcher(server.URL+"/proxy1?url={url}", server.URL+"/proxy2?url={url}")

	body, err := f.Get(context.Background(), server.URL+"/direct")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, int32(1), direct)
	assert.Equal(t, int32(1), proxy1)
	assert.Equal(t, int32(1), proxy2)
	assert.Empty(t, *delays)
}

func TestFetcher_RetriesWithBackoff(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	f, delays := newTestFetcher()

	body, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), hits)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *delays)
}

func TestFetcher_DoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f, _ := newTestFetcher()

	_, err := f.Get(context.Background(), server.URL)
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), hits)
}

func TestFetcher_GivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f, delays := newTestFetcher()

	_, err := f.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(4), hits)
	assert.Len(t, *delays, 3)
}

func TestFetcher_RetryDelayIsCapped(t *testing.T) {
	f := NewFetcher(FetcherConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second})
	f.jitter = func(time.Duration) time.Duration { return 0 }

	assert.Equal(t, time.Second, f.retryDelay(0))
	assert.Equal(t, 2*time.Second, f.retryDelay(1))
	assert.Equal(t, 3*time.Second, f.retryDelay(2))
}

func TestProxyURL(t *testing.T) {
	assert.Equal(t, "https://p.example/?u=https%3A%2F%2Fa.example%2Fx", proxyURL("https://p.example/?u={url}", "https://a.example/x"))
	assert.Equal(t, "https://p.example/https%3A%2F%2Fa.example%2Fx", proxyURL("https://p.example/", "https://a.example/x"))
}
