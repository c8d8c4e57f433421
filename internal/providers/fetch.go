package providers

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout     = 30 * time.Second
	maxResponseBytes   = 64 << 20
	retryBackoffFactor = 2
)

// Fetcher retrieves catalog payloads over HTTP. When proxies are configured a
// failed direct request falls through each proxy once, in order. Retryable
// failures of the whole chain are repeated with exponential backoff and
// jitter.
type Fetcher struct {
	httpClient *http.Client
	proxies    []string // templates containing {url}
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Timeout    time.Duration
	Proxies    []string
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 3 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		proxies:    cfg.Proxies,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
		sleep:      sleepContext,
		jitter: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
}

// Get fetches target, falling back through the proxy chain and retrying
// retryable failures.
func (f *Fetcher) Get(ctx context.Context, target string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.retryDelay(attempt - 1)
			logrus.WithFields(logrus.Fields{
				"url":     target,
				"attempt": attempt,
				"delay":   delay,
			}).Debug("Retrying catalog fetch")
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := f.getThroughChain(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// getThroughChain tries the direct URL and then each proxy exactly once.
func (f *Fetcher) getThroughChain(ctx context.Context, target string) ([]byte, error) {
	body, err := f.do(ctx, target)
	if err == nil {
		return body, nil
	}

	for i, tmpl := range f.proxies {
		proxied := proxyURL(tmpl, target)
		logrus.WithFields(logrus.Fields{
			"url":   target,
			"proxy": i + 1,
			"error": err,
		}).Debug("Direct catalog fetch failed, trying proxy")

		body, err = f.do(ctx, proxied)
		if err == nil {
			return body, nil
		}
	}

	return nil, err
}

func (f *Fetcher) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Wordmark/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// retryDelay is base * 2^attempt plus up to one base of jitter, capped.
func (f *Fetcher) retryDelay(attempt int) time.Duration {
	delay := f.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	delay += f.jitter(f.baseDelay)
	if delay > f.maxDelay {
		delay = f.maxDelay
	}
	return delay
}

func proxyURL(tmpl, target string) string {
	if strings.Contains(tmpl, "{url}") {
		return strings.ReplaceAll(tmpl, "{url}", url.QueryEscape(target))
	}
	return tmpl + url.QueryEscape(target)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
