package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// DefaultRetryAfter is the cool-down applied when a 429 carries no usable
// Retry-After value.
const DefaultRetryAfter = time.Minute

// StatusError is a non-200 answer from a provider API. Body is truncated.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Retryable reports whether the same request may succeed later.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// RateLimitError marks a provider as throttled until RetryAfter has passed.
// The fallback chain uses it to open that provider's circuit.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s throttled, retry in %s: %v", e.Provider, e.RetryAfter.Round(time.Second), e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError wraps err for provider. A non-positive retryAfterSecs
// falls back to DefaultRetryAfter.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	wait := DefaultRetryAfter
	if retryAfterSecs > 0 {
		wait = time.Duration(retryAfterSecs) * time.Second
	}
	return &RateLimitError{Provider: provider, RetryAfter: wait, Err: err}
}

// ParseRetryAfterHeader reads a Retry-After value as whole seconds. Both the
// delta-seconds and the HTTP-date forms are accepted; anything else, or a
// date already in the past, yields 0.
func ParseRetryAfterHeader(val string) int {
	return retryAfterAt(val, time.Now())
}

func retryAfterAt(val string, now time.Time) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	wait := at.Sub(now)
	if wait <= 0 {
		return 0
	}
	// round up so a sub-second remainder still waits
	return int((wait + time.Second - 1) / time.Second)
}
