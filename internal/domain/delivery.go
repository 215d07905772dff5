package domain

import "time"

// DeliveryResult describes the outcome of one successful webhook delivery.
// It is transient: the pipeline reports it to callbacks and drops it.
type DeliveryResult struct {
	// RequestID is the X-Request-Id header value sent with the final attempt.
	RequestID string

	// StatusCode is the HTTP status of the accepted response.
	StatusCode int

	// Body is the raw response body, kept for diagnostics.
	Body string

	// Attempts is the number of attempts performed, including the
	// successful one.
	Attempts int

	// Elapsed is the total time spent across attempts and backoff waits.
	Elapsed time.Duration
}
