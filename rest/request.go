package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/AndroidDev77/bydfipy/sign"
)

// ErrCredentials indicates a signed endpoint was called without an API key
// and secret configured.
var ErrCredentials = errors.New("api key and secret required")

// Rate limit response headers.
const (
	headerUsedWeight  = "X-MBX-USED-WEIGHT-1M"
	headerLimitWeight = "X-MBX-LIMIT-WEIGHT-1M"
	headerAPIKey      = "X-MBX-APIKEY"
)

// APIError represents an error response from the BYDFi API. The Code field
// is the venue's own error code, distinct from the HTTP status.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bydfi api error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("bydfi api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// AuthError is an APIError with HTTP status 401: the signature or key was
// rejected.
type AuthError struct {
	APIError
}

// RateLimitError is an APIError with HTTP status 429. RetryAfter carries the
// venue's Retry-After hint.
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

// errorFromResponse maps an HTTP error response to the matching error type.
func errorFromResponse(resp *http.Response, body []byte) error {
	var venue struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	json.Unmarshal(body, &venue) // best effort; some errors have no JSON body

	apiErr := APIError{
		StatusCode: resp.StatusCode,
		Code:       venue.Code,
		Message:    venue.Msg,
		Body:       body,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &AuthError{APIError: apiErr}
	case http.StatusTooManyRequests:
		retryAfter := 60 * time.Second
		if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = time.Duration(v) * time.Second
		}
		return &RateLimitError{APIError: apiErr, RetryAfter: retryAfter}
	default:
		return &apiErr
	}
}

// doRequest performs one HTTP request. Signed requests get a timestamp and
// signature appended to the query string and carry the API key header.
func (c *Client) doRequest(ctx context.Context, method, path string, params *sign.Params, signed bool) ([]byte, error) {
	if params == nil {
		params = sign.NewParams()
	}

	var query string
	if signed {
		if c.apiKey == "" || c.apiSecret == "" {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrCredentials)
		}
		// Sign a clone: each attempt gets a fresh timestamp and signature.
		query = params.Clone().Sign(c.apiSecret, sign.Timestamp())
	} else {
		query = params.Encode()
	}

	fullURL := c.baseURL + path
	if query != "" {
		fullURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if signed {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	c.updateRateLimits(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, errorFromResponse(resp, body)
	}

	return body, nil
}

// updateRateLimits records the venue's weight bookkeeping headers.
func (c *Client) updateRateLimits(h http.Header) {
	used, err := strconv.Atoi(h.Get(headerUsedWeight))
	if err != nil {
		return
	}

	c.rateMu.Lock()
	c.rateUsed = used
	if limit, err := strconv.Atoi(h.Get(headerLimitWeight)); err == nil {
		c.rateLimit = limit
	}
	c.rateMu.Unlock()
}

// doWithRetry performs a request with exponential backoff retry. Auth and
// credential failures never retry; rate limiting and server errors do.
func (c *Client) doWithRetry(ctx context.Context, method, path string, params *sign.Params, signed bool) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, method, path, params, signed)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get performs a public GET request with retries.
func (c *Client) get(ctx context.Context, path string, params *sign.Params, result any) error {
	return c.call(ctx, http.MethodGet, path, params, false, result)
}

// getSigned performs a signed GET request with retries.
func (c *Client) getSigned(ctx context.Context, path string, params *sign.Params, result any) error {
	return c.call(ctx, http.MethodGet, path, params, true, result)
}

// postSigned performs a signed POST request with retries.
func (c *Client) postSigned(ctx context.Context, path string, params *sign.Params, result any) error {
	return c.call(ctx, http.MethodPost, path, params, true, result)
}

// deleteSigned performs a signed DELETE request with retries.
func (c *Client) deleteSigned(ctx context.Context, path string, params *sign.Params, result any) error {
	return c.call(ctx, http.MethodDelete, path, params, true, result)
}

func (c *Client) call(ctx context.Context, method, path string, params *sign.Params, signed bool, result any) error {
	body, err := c.doWithRetry(ctx, method, path, params, signed)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
