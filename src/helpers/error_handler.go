package helpers

import (
	"fmt"
	"time"

	"platform-observer/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PlatformError struct {
	Message string
	Cause   error
}

func (e *PlatformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// Distinct error types for type assertions at the recovery boundaries.
type ConfigurationError struct{ PlatformError }
type NetworkError struct {
	PlatformError
	Endpoint   string
	StatusCode int
}
type SocketError struct{ PlatformError }
type StorageError struct{ PlatformError }
type NavigationError struct{ PlatformError }

// -----------------------------------------------------------------------------

// NewNetworkError wraps a transport or HTTP failure with its endpoint.
func NewNetworkError(endpoint string, statusCode int, cause error) *NetworkError {
	return &NetworkError{
		PlatformError: PlatformError{
			Message: fmt.Sprintf("request to %s failed", endpoint),
			Cause:   cause,
		},
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// Retryable lets an error opt out of retries. Non-retryable failures
// (4xx other than 429) are surfaced immediately.
type Retryable interface {
	Retryable() bool
}

// Retryable: plain platform errors (decode failures, bad input) are terminal.
func (e *PlatformError) Retryable() bool {
	return false
}

// Retryable reports whether the request is worth repeating.
func (e *NetworkError) Retryable() bool {
	if e.StatusCode == 0 || e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}

// -----------------------------------------------------------------------------

// RetryWithBackoff attempts the operation up to maxRetries times with
// exponential backoff starting at baseDelay.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if r, ok := err.(Retryable); ok && !r.Retryable() {
			return err
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return lastErr
}
