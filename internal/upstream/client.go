/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package upstream implements C1: fetching manifests, product documents,
// and images from the Promidata feed over HTTP with retry and backoff.
package upstream

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/atlaspim/syncengine/internal/domain"
)

const (
	maxAttempts        = 3
	defaultTimeout     = 30 * time.Second
	initialBackoff     = 1 * time.Second
)

// Client is C1's public surface: fetchText, fetchJSON, fetchBytes.
// Every operation shares the same retry policy (§4.1): 5xx/timeout
// retries, 429 honors Retry-After, other 4xx fails immediately.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
	}
}

// BaseURL returns the configured upstream root, used by callers that
// resolve relative manifest/blob URLs.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchText retrieves a URL's body as raw bytes, decoded as text by the
// caller (used for the manifest, whose content-type is plain text).
func (c *Client) FetchText(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url, defaultTimeout)
}

// FetchJSON retrieves a URL's body; the caller unmarshals the returned
// bytes into whatever shape C3 expects (kept as bytes here so C1 stays
// decode-agnostic per DN1 — only C3 knows the document shape).
func (c *Client) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url, defaultTimeout)
}

// FetchBytes retrieves a binary payload (an image). timeout overrides
// the 30s default when the caller needs the 60s large-master allowance
// named in §4.6.
func (c *Client) FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return c.fetch(ctx, url, timeout)
}

func (c *Client) fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var body []byte
	attempts := 0
	lastStatus := 0

	operation := func() error {
		attempts++
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(&domain.UpstreamError{URL: url, Attempts: attempts, Cause: err})
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempts >= maxAttempts {
				return backoff.Permanent(&domain.UpstreamError{URL: url, Attempts: attempts, Cause: err})
			}
			return err // network/timeout: retry
		}
		defer resp.Body.Close()
		lastStatus = resp.StatusCode

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			if wait := retryAfter(resp.Header.Get("Retry-After")); wait > 0 {
				time.Sleep(wait)
			}
			if attempts >= maxAttempts {
				return backoff.Permanent(&domain.UpstreamError{URL: url, Attempts: attempts, LastStatus: resp.StatusCode})
			}
			return &domain.UpstreamError{URL: url, Attempts: attempts, LastStatus: resp.StatusCode}
		case resp.StatusCode >= 500:
			if attempts >= maxAttempts {
				return backoff.Permanent(&domain.UpstreamError{URL: url, Attempts: attempts, LastStatus: resp.StatusCode})
			}
			return &domain.UpstreamError{URL: url, Attempts: attempts, LastStatus: resp.StatusCode}
		default:
			// other 4xx: fail immediately, no retry
			return backoff.Permanent(&domain.UpstreamError{URL: url, Attempts: attempts, LastStatus: resp.StatusCode})
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialBackoff
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0 // bounded by maxAttempts via backoff.WithMaxRetries
	policy := backoff.WithMaxRetries(bo, maxAttempts-1)

	if err := backoff.Retry(operation, policy); err != nil {
		if ue, ok := err.(*domain.UpstreamError); ok {
			return nil, ue
		}
		return nil, &domain.UpstreamError{URL: url, Attempts: attempts, LastStatus: lastStatus, Cause: err}
	}
	return body, nil
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		return time.Until(when)
	}
	return 0
}
