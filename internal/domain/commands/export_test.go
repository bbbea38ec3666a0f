package commands

import "time"

// WithClock replaces the governor's clock for testing.
func (it *RateGovernor) WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) *RateGovernor {
	it.now = now
	it.after = after
	return it
}
