// Package fetch wraps a storefront.Fetcher with per-domain rate limiting and
// jittered retries for transient failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/storefront-insights/internal/clock"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
	"github.com/JakeFAU/storefront-insights/internal/telemetry"
)

// Client performs polite, retried GETs against a storefront.
type Client struct {
	fetcher storefront.Fetcher
	limiter storefront.Limiter
	policy  RetryPolicy
	pauser  storefront.Pauser
	clock   storefront.Clock
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithPauser replaces the timer-based pause between attempts.
func WithPauser(p storefront.Pauser) Option {
	return func(c *Client) {
		if p != nil {
			c.pauser = p
		}
	}
}

// WithClock sets the clock used to interpret HTTP-date Retry-After values.
func WithClock(clk storefront.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// NewClient builds a Client.
func NewClient(fetcher storefront.Fetcher, limiter storefront.Limiter, policy RetryPolicy, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	c := &Client{
		fetcher: fetcher,
		limiter: limiter,
		policy:  policy,
		pauser:  timerPauser{},
		clock:   clock.NewSystem(),
		logger:  logger.Named("fetch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches an HTML resource.
func (c *Client) Get(ctx context.Context, rawURL string) (storefront.FetchResponse, error) {
	return c.Do(ctx, storefront.FetchRequest{URL: rawURL})
}

// GetJSON fetches a JSON resource.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (storefront.FetchResponse, error) {
	return c.Do(ctx, storefront.FetchRequest{
		URL:     rawURL,
		Headers: http.Header{"Accept": {"application/json"}},
	})
}

// Do fetches a resource, waiting on the domain limiter before every attempt.
// A 2xx response is returned as-is. A non-transient status is not retried: the
// response comes back alongside a *FetchError wrapping ErrResourceAbsent.
// Transient failures are retried until the attempt budget is spent.
func (c *Client) Do(ctx context.Context, request storefront.FetchRequest) (storefront.FetchResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "fetch.get", "url", request.URL)
	defer span.End()

	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, request.URL); err != nil {
				return c.fail(span, request.URL, attempt-1, lastStatus, err)
			}
		}

		resp, err := c.fetcher.Fetch(ctx, request)
		if err != nil {
			telemetry.ObserveFetchAttempt(request.URL, "error", 0)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return c.fail(span, request.URL, attempt, 0, ctxErr)
			}
			reason, retryable := c.policy.ClassifyError(err)
			if !retryable {
				return c.fail(span, request.URL, attempt, 0, err)
			}
			lastErr, lastStatus = err, 0
			if err := c.wait(ctx, request.URL, attempt, reason, c.policy.Backoff(attempt)); err != nil {
				return c.fail(span, request.URL, attempt, 0, err)
			}
			continue
		}

		telemetry.ObserveFetchAttempt(request.URL, outcome(resp.StatusCode), len(resp.Body))
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		reason, retryable := c.policy.ClassifyStatus(resp.StatusCode)
		if !retryable {
			_, err := c.fail(span, request.URL, attempt, resp.StatusCode,
				fmt.Errorf("status %d: %w", resp.StatusCode, storefront.ErrResourceAbsent))
			return resp, err
		}
		lastErr, lastStatus = fmt.Errorf("status %d", resp.StatusCode), resp.StatusCode

		delay := c.policy.Backoff(attempt)
		if reason == ReasonRateLimited {
			delay = c.policy.RateLimitedBackoff(attempt, resp.Headers.Get("Retry-After"), c.clock.Now())
		}
		if err := c.wait(ctx, request.URL, attempt, reason, delay); err != nil {
			return c.fail(span, request.URL, attempt, lastStatus, err)
		}
	}

	return c.fail(span, request.URL, c.policy.MaxAttempts, lastStatus, fmt.Errorf("retries exhausted: %w", lastErr))
}

// wait pauses before the next attempt unless this was the last one.
func (c *Client) wait(ctx context.Context, rawURL string, attempt int, reason string, delay time.Duration) error {
	if attempt >= c.policy.MaxAttempts {
		return nil
	}
	telemetry.ObserveRetry(reason)
	c.logger.Debug("retrying fetch",
		zap.String("url", rawURL),
		zap.Int("attempt", attempt),
		zap.String("reason", reason),
		zap.Duration("delay", delay),
	)
	return c.pauser.Pause(ctx, delay)
}

func (c *Client) fail(span trace.Span, rawURL string, attempts, status int, err error) (storefront.FetchResponse, error) {
	fetchErr := &storefront.FetchError{
		URL:        rawURL,
		Attempts:   attempts,
		StatusCode: status,
		Err:        err,
	}
	span.RecordError(fetchErr)
	if !errors.Is(err, storefront.ErrResourceAbsent) {
		span.SetStatus(codes.Error, err.Error())
	}
	return storefront.FetchResponse{}, fetchErr
}

func outcome(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "success"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
