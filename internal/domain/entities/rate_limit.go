package entities

import "time"

// RateLimitState is the API quota last reported by the host for the shared credential.
type RateLimitState struct {
	Remaining int
	Total     int
	ResetAt   time.Time
}

// Known reports whether the host has reported a quota yet.
func (s RateLimitState) Known() bool {
	return s.Total > 0 && !s.ResetAt.IsZero()
}

// Below reports whether fewer than buffer calls are left.
func (s RateLimitState) Below(buffer int) bool {
	return s.Known() && s.Remaining < buffer
}
