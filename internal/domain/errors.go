package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAuthenticated means no valid session backs the request. It
	// is never conflated with "caller has zero dashboards".
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden means the session is valid but the caller's role
	// does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstreamQuery wraps identity/profile store read failures so
	// they surface instead of masquerading as an empty result.
	ErrUpstreamQuery = errors.New("upstream query failed")

	// ErrUpstreamService wraps transcription or chat-completion
	// provider failures.
	ErrUpstreamService = errors.New("upstream service failed")
)
