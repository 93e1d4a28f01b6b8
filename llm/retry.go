package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const retryBaseDelay = 500 * time.Millisecond

// withRetry runs fn up to maxRetries+1 times with exponential backoff,
// stopping early on context cancellation or a non-retryable API error.
func withRetry(ctx context.Context, maxRetries int, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= maxRetries || !retryable(err) {
			return err
		}

		delay := retryBaseDelay << attempt
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// retryable reports whether an API call is worth repeating: rate limits and
// server-side failures are, client-side errors and cancellation are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return true
}
