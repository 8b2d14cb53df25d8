package client

import (
	"fmt"
	"time"
)

// defaultRetryAfter is used when a 429 response carries no usable
// Retry-After header.
const defaultRetryAfter = 60 * time.Second

// RateLimitError reports an HTTP 429 from the answering backend. The client
// never retries; the delay is surfaced to the user, who must resend.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, please retry in %d seconds", int(e.RetryAfter.Seconds()))
}

// APIError reports any non-2xx, non-429 response. Detail carries the
// server-supplied message when the body had one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API error: %d", e.Status)
}
