package commands

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

// RateGovernor holds callers back while the API quota is below a safety buffer.
type RateGovernor struct {
	buffer       int
	extraWait    time.Duration
	pollInterval time.Duration
	metrics      repositories.MetricsRepository

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewRateGovernor creates a governor tuned by settings.
func NewRateGovernor(settings *entities.Settings, metrics repositories.MetricsRepository) *RateGovernor {
	return &RateGovernor{
		buffer:       settings.RateBuffer,
		extraWait:    settings.ExtraWait,
		pollInterval: settings.PollInterval,
		metrics:      metrics,
		now:          time.Now,
		after:        time.After,
	}
}

// EnsureCapacity returns immediately when at least buffer calls remain. Otherwise it
// blocks until the quota reset time plus the extra wait has passed, logging once per
// poll interval. Cancelling ctx while waiting returns entities.ErrRateLimitNearExhaustion
// wrapping the context error.
func (it *RateGovernor) EnsureCapacity(ctx context.Context, state entities.RateLimitState) error {
	if !state.Below(it.buffer) {
		return nil
	}

	started := it.now()
	deadline := state.ResetAt.Add(it.extraWait)
	logger.Warnf(
		"Remaining rate limit is %d of %d. Waiting %d mins for reset at %s before continuing",
		state.Remaining, state.Total, int(deadline.Sub(started).Minutes()), deadline.Format(time.RFC1123),
	)

	for now := started; now.Before(deadline); now = it.now() {
		wait := min(it.pollInterval, deadline.Sub(now))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", entities.ErrRateLimitNearExhaustion, ctx.Err())
		case <-it.after(wait):
			logger.Infof("Still waiting for rate limit reset (%s left)", deadline.Sub(it.now()).Round(time.Second))
		}
	}

	waited := it.now().Sub(started)
	it.metrics.RecordWait(waited)
	logger.Infof("Rate limit wait over after %s, resuming", waited.Round(time.Second))
	return nil
}
