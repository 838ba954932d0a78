package webhook

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RetryConfig configures delivery retries.
type RetryConfig struct {
	MaxAttempts  int           // Maximum number of attempts, at least 1
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Upper bound for the backoff delay
	Multiplier   float64       // Delay multiplier for exponential backoff
	Jitter       bool          // Add up to 25% random jitter to each delay
}

// DefaultRetryConfig returns the delivery defaults. Slack keeps a
// response_url valid for 30 minutes, so a handful of attempts is plenty.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// statusCoder is implemented by slack-go HTTP errors.
type statusCoder interface {
	HTTPStatusCode() int
}

// retryable reports whether a failed post is worth repeating: transport
// errors, 429 and 5xx are; other HTTP statuses are final.
func retryable(err error) bool {
	var sc statusCoder
	if !errors.As(err, &sc) {
		return true
	}
	code := sc.HTTPStatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

// withRetry runs fn until it succeeds, fails permanently, runs out of
// attempts or ctx is done. lim, when set, paces every attempt.
func withRetry(ctx context.Context, cfg RetryConfig, lim *rate.Limiter, fn func() error, onRetry func(attempt int, err error, wait time.Duration)) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if cfg.Jitter {
			wait = addJitter(delay)
		}
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("delivery failed: %w", err)
}

// addJitter adds random jitter (0-25% of delay).
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}
