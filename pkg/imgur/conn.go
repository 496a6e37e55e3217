package imgur

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"imgurr/pkg/errors"
	"imgurr/pkg/logger"
	"imgurr/pkg/ratelimit"
)

// Options configures connections to the gallery hosts
type Options struct {
	FeedURL   string
	ImageURL  string
	UserAgent string
	Timeout   time.Duration
	Limiter   ratelimit.Limiter
	Logger    logger.Logger
}

// Dialer opens connections to the feed and image hosts
type Dialer struct {
	opts Options
}

// NewDialer fills in defaults for any zero option
func NewDialer(opts Options) *Dialer {
	if opts.FeedURL == "" {
		opts.FeedURL = DefaultFeedURL
	}
	if opts.ImageURL == "" {
		opts.ImageURL = DefaultImageURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	return &Dialer{opts: opts}
}

// DialFeed opens a connection to the feed host
func (d *Dialer) DialFeed() *Conn {
	return d.dial(d.opts.FeedURL)
}

// DialImages opens a connection to the image host
func (d *Dialer) DialImages() *Conn {
	return d.dial(d.opts.ImageURL)
}

func (d *Dialer) dial(baseURL string) *Conn {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxConnsPerHost:     1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Conn{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		client:    &http.Client{Transport: transport, Timeout: d.opts.Timeout},
		userAgent: d.opts.UserAgent,
		limiter:   d.opts.Limiter,
		logger:    d.opts.Logger,
	}
}

// Conn is a single keep-alive connection to one host. Requests on a Conn
// are issued one at a time.
type Conn struct {
	baseURL   string
	transport *http.Transport
	client    *http.Client
	userAgent string
	limiter   ratelimit.Limiter
	logger    logger.Logger
}

// URL returns the absolute URL for path on this connection's host
func (c *Conn) URL(path string) string {
	return c.baseURL + path
}

// Get issues a GET for path. Failures below HTTP (dial, reset, EOF,
// malformed status line) come back as transport errors; the caller owns
// status handling and closing the body.
func (c *Conn) Get(ctx context.Context, path string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Wrap(errors.ErrorTypeTransport, err, "GET %s", path)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})
	return resp, nil
}

// Close drops the underlying connection
func (c *Conn) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// statusError maps a non-2xx status that the caller did not handle itself
func statusError(resp *http.Response, path string) error {
	if errors.IsRetryableStatusCode(resp.StatusCode) {
		return errors.WithCode(errors.ErrorTypeServerError, resp.StatusCode, "GET %s", path)
	}
	return errors.WithCode(errors.ErrorTypeHTTPStatus, resp.StatusCode, "GET %s", path)
}
