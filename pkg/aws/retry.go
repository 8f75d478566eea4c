package aws

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
)

// retryableCodes are the API error codes worth retrying. Everything else
// fails fast.
var retryableCodes = map[string]bool{
	"ThrottlingException":      true,
	"Throttling":               true,
	"TooManyRequestsException": true,
	"RequestLimitExceeded":     true,
	"RequestTimeout":           true,
	"ServiceUnavailable":       true,
}

// RetryPolicy retries an operation on throttling and server faults with
// linear backoff.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy matches the CLI defaults.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: time.Second}

// Do runs op up to MaxAttempts times. Non-retryable errors return
// immediately; the last error is returned when attempts run out.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff * time.Duration(attempt)):
		}
	}
	return err
}

// IsRetryable reports whether an error is a throttle or a server-side fault.
func IsRetryable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if retryableCodes[apiErr.ErrorCode()] {
		return true
	}
	return apiErr.ErrorFault() == smithy.FaultServer
}
