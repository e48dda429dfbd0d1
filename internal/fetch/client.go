// Package fetch provides the politeness-aware HTTP client all source
// adapters fetch through.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a page we read.
const maxBodyBytes = 2 * 1024 * 1024

// Client fetches one URL and returns its body. A non-nil error means the
// page was not fetched; callers treat that as "skip this item", never as
// fatal to the run.
type Client interface {
	Get(ctx context.Context, url string) (string, error)
}

// Options configures an HTTPClient.
type Options struct {
	// UserAgent identifies the client to remote servers.
	UserAgent string
	// Timeout bounds each request end to end.
	Timeout time.Duration
	// Delay is the minimum spacing between outbound requests.
	Delay time.Duration
	// MaxConnections bounds simultaneous in-flight requests.
	MaxConnections int
}

// HTTPClient implements Client with a shared inter-request delay and a
// connection bound. Safe for concurrent use; all calls made during one
// adapter run share the same limiter and semaphore state. Requests are
// single attempts: failures are returned, never retried.
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
	sem     chan struct{}
	ua      string
}

// NewHTTPClient creates an HTTPClient, applying defaults for zero options.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Delay == 0 {
		opts.Delay = 2 * time.Second
	}
	if opts.MaxConnections == 0 {
		opts.MaxConnections = 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; HackSeekBot/1.0)"
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxConnsPerHost:     opts.MaxConnections,
			},
		},
		limiter: rate.NewLimiter(rate.Every(opts.Delay), 1),
		sem:     make(chan struct{}, opts.MaxConnections),
		ua:      opts.UserAgent,
	}
}

// Get fetches a URL. The politeness delay is enforced before every request
// regardless of outcome; timeouts, transport errors, and non-2xx statuses
// all return an error with no content.
func (c *HTTPClient) Get(ctx context.Context, targetURL string) (string, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return "", eris.Wrap(ctx.Err(), "fetch: acquire connection")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "fetch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: %s", targetURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("fetch: non-2xx status",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode),
		)
		return "", eris.Errorf("fetch: status %d from %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrapf(err, "fetch: read body from %s", targetURL)
	}

	return string(body), nil
}
