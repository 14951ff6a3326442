package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRateLimited is returned when a caller exhausts a rate bucket.
	ErrRateLimited = errors.New("rate limited")
	// ErrApprovalRequired is returned when a gate transition lacks an approved checkpoint.
	ErrApprovalRequired = errors.New("approval required")
)

// RateLimitError carries the bucket state so the HTTP layer can set
// X-RateLimit headers and a retry hint. It matches ErrRateLimited
// under errors.Is.
type RateLimitError struct {
	Action            string
	Limit             int
	Remaining         int
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return "rate limited: " + e.Action
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
