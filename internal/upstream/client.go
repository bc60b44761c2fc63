// Package upstream is the typed façade over the remote REST mailbox
// service described in §4.6. It owns the retrying HTTP transport and
// the cache manager (by reference, never owning it — §9 "cyclic
// references: none essential").
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
)

// Client is the façade every IMAP/SMTP handler talks to instead of
// building HTTP requests itself.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	cache   *cache.Manager
	logger  *log.Logger
}

// Config configures the client per §4.6 and §6.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
	}
}

// NewClient builds a client wrapping go-retryablehttp with the
// exponential-backoff-with-full-jitter policy from §4.6, retrying only
// transport errors and 429/502/503 responses.
func NewClient(cfg Config, mgr *cache.Manager, logger *log.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = cfg.RetryWaitMin
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil // the gateway logs at the call site, not inside the transport
	rc.Backoff = fullJitterBackoff
	rc.CheckRetry = checkRetry

	return &Client{baseURL: cfg.BaseURL, http: rc, cache: mgr, logger: logger}
}

// fullJitterBackoff implements base*2^attempt capped at max, then
// picks a uniformly random duration in [0, backoff] — "full jitter" —
// per §4.6.
func fullJitterBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	backoff := min << attemptNum
	if backoff <= 0 || backoff > max {
		backoff = max
	}
	return time.Duration(rand.Int63n(int64(backoff) + 1))
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true, nil
	}
	return false, nil
}

// doJSON issues an HTTP request against the upstream, bearer-authed
// with apiKey, decoding a JSON response body into out (when non-nil).
// idempotent controls whether go-retryablehttp's retry policy applies;
// non-idempotent writes (POST/PATCH/DELETE) are issued with RetryMax=0
// so they are never silently double-sent.
func (c *Client) doJSON(ctx context.Context, method, path, apiKey string, body, out interface{}, idempotent bool) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindInternal, Message: "encode request body", Err: err}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Kind: KindInternal, Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.http
	if !idempotent {
		client = shallowCopyNoRetry(c.http)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Kind: KindTransient, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, string(respBody), nil)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &Error{Kind: KindInternal, Message: "decode response", Err: err}
		}
	}
	return nil
}

// shallowCopyNoRetry returns a client sharing the same underlying
// http.Client/transport but with retries disabled, for mutating calls.
func shallowCopyNoRetry(c *retryablehttp.Client) *retryablehttp.Client {
	clone := *c
	clone.RetryMax = 0
	return &clone
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
