package slack

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"time"

	"github.com/slack-go/slack"
)

// RetryPolicy defines the retry behavior for failed API calls.
type RetryPolicy struct {
	MaxAttempts     int           // Maximum number of attempts (including first try)
	InitialInterval time.Duration // Initial backoff interval
	MaxInterval     time.Duration // Maximum backoff interval
	Multiplier      float64       // Backoff multiplier
	JitterFactor    float64       // Random jitter factor (0.0-1.0)
}

// DefaultRetryPolicy returns a sensible default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// withRetry runs fn, retrying rate-limited and timed-out calls.
// Slack's Retry-After header takes precedence over computed backoff.
// Non-retryable errors are returned as-is for classification upstream.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		wait, retryable := c.retryDelay(lastErr, attempt)
		if !retryable || attempt == c.retry.MaxAttempts {
			return lastErr
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// retryDelay reports whether the error is worth retrying and how long to wait.
func (c *Client) retryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		wait := rateLimited.RetryAfter
		if wait <= 0 {
			wait = c.retry.InitialInterval
		}
		if wait > c.retry.MaxInterval {
			wait = c.retry.MaxInterval
		}
		return wait, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoff(attempt), true
	}

	return 0, false
}

// backoff computes exponential backoff with jitter, capped at MaxInterval.
func (c *Client) backoff(attempt int) time.Duration {
	d := float64(c.retry.InitialInterval) * math.Pow(c.retry.Multiplier, float64(attempt-1))
	jitter := 1.0 + (rand.Float64()*2.0-1.0)*c.retry.JitterFactor
	d *= jitter
	if d > float64(c.retry.MaxInterval) {
		d = float64(c.retry.MaxInterval)
	}
	return time.Duration(d)
}
