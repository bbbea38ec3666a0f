//go:build unit

package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

func TestRateLimitStateBelow(t *testing.T) {
	t.Parallel()

	reset := time.Date(2024, time.January, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		state    entities.RateLimitState
		expected bool
	}{
		{name: "should not hold back before any quota was reported", state: entities.RateLimitState{}, expected: false},
		{name: "should not hold back at the buffer", state: entities.RateLimitState{Remaining: 100, Total: 5000, ResetAt: reset}, expected: false},
		{name: "should hold back under the buffer", state: entities.RateLimitState{Remaining: 99, Total: 5000, ResetAt: reset}, expected: true},
		{name: "should hold back when exhausted", state: entities.RateLimitState{Remaining: 0, Total: 5000, ResetAt: reset}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			below := tt.state.Below(100)

			// then
			assert.Equal(t, tt.expected, below)
		})
	}
}
