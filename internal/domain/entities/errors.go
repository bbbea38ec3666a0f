package entities

import "errors"

var (
	// ErrRateLimitNearExhaustion marks a quota below the safety buffer; the rate governor absorbs it.
	ErrRateLimitNearExhaustion = errors.New("rate limit near exhaustion")
	// ErrTransientRefConflict marks a single ref write rejected by host validation; retried on the next pass.
	ErrTransientRefConflict = errors.New("transient ref conflict")
	// ErrEmptyRepository marks a source repository without git content, which cannot be forked.
	ErrEmptyRepository = errors.New("repository contains no git content")
	// ErrUpstreamIdentityMismatch marks a repository name that now resolves to a different repository.
	ErrUpstreamIdentityMismatch = errors.New("upstream repository identity changed")
	// ErrRetryBudgetExhausted marks a consistency loop that hit its configured pass limit.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
	// ErrMissingConfiguration marks a required environment value that was not supplied.
	ErrMissingConfiguration = errors.New("missing configuration")
	// ErrInvalidConfiguration marks a configuration value outside its allowed range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
