// Package ncbi is the HTTP layer shared by the E-utilities clients used to
// check converted PubMed queries (eutils) and to look up MeSH headings for
// synonym expansion (mesh). One rate limiter covers every request made
// through a BaseClient.
package ncbi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/henrybloomingdale/searchconv/internal/logger"
)

const (
	// DefaultBaseURL is the NCBI E-utilities base URL.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	// DefaultTool identifies this application to NCBI.
	DefaultTool = "searchconv"
	// DefaultEmail is the contact email sent to NCBI.
	DefaultEmail = "searchconv@users.noreply.github.com"

	// Requests per second allowed by NCBI.
	RateWithoutKey = 3
	RateWithKey    = 10

	// DefaultMaxResponseBytes caps a response body (50 MB).
	DefaultMaxResponseBytes int64 = 50 * 1024 * 1024

	maxRetries    = 2
	baseRetryWait = 700 * time.Millisecond
	maxRetryWait  = 4 * time.Second
)

// BaseClient sends rate-limited GET requests to E-utilities.
type BaseClient struct {
	BaseURL    string
	APIKey     string
	Tool       string
	Email      string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	MaxBytes   int64
}

// Option configures a BaseClient.
type Option func(*BaseClient)

// WithBaseURL sets the base URL for requests.
func WithBaseURL(u string) Option {
	return func(c *BaseClient) { c.BaseURL = u }
}

// WithAPIKey sets the NCBI API key and raises the rate limit to match.
// A limiter set with WithLimiter takes precedence when applied later.
func WithAPIKey(key string) Option {
	return func(c *BaseClient) {
		c.APIKey = key
		if key != "" {
			c.Limiter = rate.NewLimiter(rate.Limit(RateWithKey), 1)
		}
	}
}

// WithTool sets the tool parameter.
func WithTool(tool string) Option {
	return func(c *BaseClient) { c.Tool = tool }
}

// WithEmail sets the email parameter.
func WithEmail(email string) Option {
	return func(c *BaseClient) { c.Email = email }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BaseClient) { c.HTTPClient = hc }
}

// WithLimiter shares an existing limiter, e.g. between clients built for
// separate commands in one process.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *BaseClient) { c.Limiter = l }
}

// WithMaxResponseBytes sets the maximum allowed response body size.
func WithMaxResponseBytes(n int64) Option {
	return func(c *BaseClient) { c.MaxBytes = n }
}

// NewBaseClient creates a client with NCBI defaults.
func NewBaseClient(opts ...Option) *BaseClient {
	c := &BaseClient{
		BaseURL:    DefaultBaseURL,
		Tool:       DefaultTool,
		Email:      DefaultEmail,
		MaxBytes:   DefaultMaxResponseBytes,
		Limiter:    rate.NewLimiter(rate.Limit(RateWithoutKey), 1),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DoGet performs a rate-limited GET of endpoint with params plus the common
// NCBI parameters, retrying HTTP 429 responses. params is not modified.
func (c *BaseClient) DoGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	fullURL, err := c.requestURL(endpoint, params)
	if err != nil {
		return nil, err
	}
	logger.Debug("GET %s", redact(fullURL))

	for attempt := 0; ; attempt++ {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		body, retryAfter, err := c.fetch(ctx, endpoint, fullURL)
		if err != nil || retryAfter < 0 {
			return body, err
		}
		if attempt >= maxRetries {
			return nil, fmt.Errorf("NCBI rate limit exceeded (HTTP 429 after %d retries); set an API key with --api-key or NCBI_API_KEY", maxRetries)
		}
		if retryAfter == 0 {
			retryAfter = min(baseRetryWait*time.Duration(1<<attempt), maxRetryWait)
		}
		logger.Warn("NCBI returned 429; retrying in %s", retryAfter)
		if err := sleepWithContext(ctx, retryAfter); err != nil {
			return nil, fmt.Errorf("rate limit retry canceled: %w", err)
		}
	}
}

func (c *BaseClient) requestURL(endpoint string, params url.Values) (string, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}
	if c.Tool != "" {
		q.Set("tool", c.Tool)
	}
	if c.Email != "" {
		q.Set("email", c.Email)
	}
	u, err := url.JoinPath(c.BaseURL, endpoint)
	if err != nil {
		return "", fmt.Errorf("building URL: %w", err)
	}
	return u + "?" + q.Encode(), nil
}

// fetch performs one request. A non-negative retryAfter means the server
// answered 429 and the request should be retried after that long (0: use
// backoff).
func (c *BaseClient) fetch(ctx context.Context, endpoint, fullURL string) (body []byte, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, -1, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, retryAfterDuration(resp.Header.Get("Retry-After")), nil
	default:
		return nil, -1, fmt.Errorf("NCBI returned HTTP %d for %s", resp.StatusCode, endpoint)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.MaxBytes+1))
	if err != nil {
		return nil, -1, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > c.MaxBytes {
		return nil, -1, fmt.Errorf("response exceeds maximum size of %d bytes", c.MaxBytes)
	}
	return body, -1, nil
}

func redact(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func retryAfterDuration(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return 0
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
