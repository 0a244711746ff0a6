// Package http wraps retryablehttp for the outbound requests the
// service makes, such as fetching the ingredient catalog at startup.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// errorBodyLimit bounds how much of a failed response is quoted in the
// returned error.
const errorBodyLimit = 512

type Client struct {
	*retryablehttp.Client
}

// New returns a client with retries tuned for startup fetches: a few
// attempts with backoff, no per-attempt chatter in the logs.
func New() *Client {
	inner := retryablehttp.NewClient()
	inner.RetryMax = 4
	inner.Logger = nil
	return &Client{Client: inner}
}

// FetchBytes GETs url and returns the response body. Any non-2xx status
// is an error carrying the beginning of the response body.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("fetching %s: unexpected status %d: %s", url, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, nil
}
