// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited HTTP client shared by the
// bibliographic lookup backends.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 3

// Client wraps an http.Client with a politeness limiter so that consecutive
// API requests are spaced out (the registries ask for at least one second
// between calls), plus 429 retry with exponential backoff.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
}

// NewClient builds a Client with the given request timeout and minimum
// spacing between requests. A zero or negative delay disables the limiter.
func NewClient(timeout, delay time.Duration) *Client {
	c := &Client{
		HTTP: &http.Client{Timeout: timeout},
	}
	if delay > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return c
}

// Do waits for the politeness limiter, executes the request, and retries on
// HTTP 429 with exponential backoff (RetryBaseDelay doubling each attempt).
// On each 429 the response body is drained and closed before sleeping. After
// exhausting retries the last 429 response is returned so the caller can
// inspect it. A cancelled context aborts the wait with ctx.Err().
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := hc.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= defaultMaxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
