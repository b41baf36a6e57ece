package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
)

const (
	// acceptHeader selects the v3 REST representation.
	acceptHeader = "application/vnd.github.v3+json"
	// defaultMaxBodyBytes caps the response body when no limit is configured.
	defaultMaxBodyBytes int64 = 1 << 20
)

var (
	// errFeedURLRequired is returned by NewClient for an empty feed URL.
	errFeedURLRequired = errors.New("feed URL must be provided")
	// errBodyTooLarge is returned when the response exceeds the body cap.
	errBodyTooLarge = errors.New("response body exceeds limit")
)

// Client fetches release information from a single feed URL.
type Client struct {
	// feedURL is the latest release endpoint.
	feedURL string
	// userAgent is sent with every request.
	userAgent string
	// token is sent as "Authorization: token <token>" when not empty.
	token string
	// maxBodyBytes caps the decoded response.
	maxBodyBytes int64
	// httpClient performs the request.
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithToken attaches an API token to raise rate limits.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent overrides the identifying client header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{
				Transport: c.httpClient.Transport,
				Timeout:   timeout,
			}
		}
	}
}

// WithMaxBodyBytes caps the response body size.
func WithMaxBodyBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBodyBytes = limit
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a client for feedURL.
func NewClient(feedURL string, opts ...Option) (*Client, error) {
	if feedURL == "" {
		return nil, errFeedURLRequired
	}

	c := &Client{
		feedURL:      feedURL,
		userAgent:    "nimbus-upstream-sync",
		maxBodyBytes: defaultMaxBodyBytes,
		httpClient:   &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Latest returns the latest release. Every failure is a *upstream.NetworkError;
// a 403 response also matches upstream.ErrRateLimited.
func (c *Client) Latest(ctx context.Context) (*upstream.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, http.NoBody)
	if err != nil {
		return nil, &upstream.NetworkError{URL: c.feedURL, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)

	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	logger.DebugKV(ctx, "Requesting latest release", "url", c.feedURL, "authenticated", c.token != "")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &upstream.NetworkError{URL: c.feedURL, Err: err}
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, &upstream.NetworkError{
			URL:        c.feedURL,
			StatusCode: response.StatusCode,
			Status:     response.Status,
		}
	}

	// Read one byte past the cap to tell "exactly at the limit" from "over it".
	data, err := io.ReadAll(io.LimitReader(response.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, c.bodyError(response, fmt.Errorf("read body: %w", err))
	}

	if int64(len(data)) > c.maxBodyBytes {
		return nil, c.bodyError(response, fmt.Errorf("%w: %d bytes", errBodyTooLarge, c.maxBodyBytes))
	}

	rel, err := decodeRelease(data)
	if err != nil {
		return nil, c.bodyError(response, fmt.Errorf("decode release: %w", err))
	}

	logger.DebugKV(ctx, "Latest release received",
		"tag", rel.TagName, "name", rel.Name, "url", rel.HTMLURL)

	return rel, nil
}

func (c *Client) bodyError(response *http.Response, err error) error {
	return &upstream.NetworkError{
		URL:        c.feedURL,
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Err:        err,
	}
}
