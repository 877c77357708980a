package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(policy RetryPolicy) *Client {
	return &Client{retry: policy}
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	c := testClient(DefaultRetryPolicy())

	calls := 0
	err := c.withRetry(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesRateLimited(t *testing.T) {
	c := testClient(RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2.0,
	})

	calls := 0
	err := c.withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &slack.RateLimitedError{RetryAfter: time.Millisecond}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	c := testClient(RetryPolicy{
		MaxAttempts:     2,
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2.0,
	})

	rateLimited := &slack.RateLimitedError{RetryAfter: time.Millisecond}
	calls := 0
	err := c.withRetry(context.Background(), func() error {
		calls++
		return rateLimited
	})

	assert.Equal(t, 2, calls)
	var got *slack.RateLimitedError
	assert.ErrorAs(t, err, &got)
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	c := testClient(DefaultRetryPolicy())

	permanent := errors.New("channel_not_found")
	calls := 0
	err := c.withRetry(context.Background(), func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_HonorsCancellation(t *testing.T) {
	c := testClient(RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: time.Minute,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.withRetry(ctx, func() error {
		return &slack.RateLimitedError{RetryAfter: time.Minute}
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryDelay_CapsRetryAfter(t *testing.T) {
	c := testClient(RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
	})

	wait, retryable := c.retryDelay(&slack.RateLimitedError{RetryAfter: time.Minute}, 1)
	require.True(t, retryable)
	assert.Equal(t, 5*time.Second, wait)
}

func TestBackoff_CappedAtMaxInterval(t *testing.T) {
	c := testClient(RetryPolicy{
		MaxAttempts:     10,
		InitialInterval: time.Second,
		MaxInterval:     4 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	})

	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, 4*time.Second, c.backoff(3))
	assert.Equal(t, 4*time.Second, c.backoff(6))
}
