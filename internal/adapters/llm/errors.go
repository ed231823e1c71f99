package llm

import "errors"

// Standard errors for provider calls.
var (
	// ErrNoProviderConfigured is returned by Select when no backend in the
	// priority list has a usable credential.
	ErrNoProviderConfigured = errors.New("no provider configured")

	// ErrUnknownProvider is returned when the priority list names a backend
	// this package does not implement.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidConfiguration is returned when a provider is missing a
	// required setting (API key, base URL).
	ErrInvalidConfiguration = errors.New("invalid provider configuration")

	// ErrCallFailed is returned when the outbound request fails or the
	// backend replies with a non-2xx status.
	ErrCallFailed = errors.New("provider call failed")

	// ErrDeadlineExceeded is returned when the provider call times out.
	ErrDeadlineExceeded = errors.New("provider call timed out")

	// ErrRateLimited is returned on HTTP 429 replies.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrEmptyCompletion is returned when a 2xx reply carries no text.
	ErrEmptyCompletion = errors.New("provider returned empty completion")
)
