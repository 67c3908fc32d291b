package fetch

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Retry reasons reported to telemetry and logs.
const (
	ReasonConnection  = "connection"
	ReasonTimeout     = "timeout"
	ReasonServerError = "server_error"
	ReasonRateLimited = "rate_limited"
)

// RetryPolicy describes jittered exponential backoff with a 429 extension.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	Jitter        float64
	MaxRetryAfter time.Duration

	// random returns a value in [0, n). Nil uses crypto/rand.
	random func(n int64) int64
}

// DefaultRetryPolicy returns the production backoff settings.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   4,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		Multiplier:    2,
		Jitter:        0.2,
		MaxRetryAfter: 30 * time.Second,
	}
}

// Backoff returns the wait before retry number retry (1-based).
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(retry-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return p.applyJitter(time.Duration(delay))
}

// RateLimitedBackoff returns the extended wait after a 429: the larger of twice
// the normal backoff and the server's Retry-After hint, capped by MaxRetryAfter.
func (p RetryPolicy) RateLimitedBackoff(retry int, retryAfter string, now time.Time) time.Duration {
	delay := 2 * p.Backoff(retry)
	if hint, ok := parseRetryAfter(retryAfter, now); ok && hint > delay {
		delay = hint
	}
	if p.MaxRetryAfter > 0 && delay > p.MaxRetryAfter {
		delay = p.MaxRetryAfter
	}
	return delay
}

// ClassifyStatus reports whether an HTTP status is transient and why.
func (p RetryPolicy) ClassifyStatus(status int) (string, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return ReasonRateLimited, true
	case status >= 500 && status <= 599:
		return ReasonServerError, true
	default:
		return "", false
	}
}

// ClassifyError reports whether a transport error is transient and why.
func (p RetryPolicy) ClassifyError(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, context.Canceled) {
		return "", false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ReasonTimeout, true
		}
		return ReasonConnection, true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return ReasonConnection, true
	}
	return "", false
}

func (p RetryPolicy) applyJitter(delay time.Duration) time.Duration {
	if p.Jitter <= 0 || delay <= 0 {
		return delay
	}
	span := int64(float64(delay) * p.Jitter)
	if span <= 0 {
		return delay
	}
	offset := p.randomInt(2*span+1) - span
	return delay + time.Duration(offset)
}

func (p RetryPolicy) randomInt(n int64) int64 {
	if p.random != nil {
		return p.random(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return n / 2
	}
	return v.Int64()
}

func parseRetryAfter(raw string, now time.Time) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := http.ParseTime(raw)
	if err != nil {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}
