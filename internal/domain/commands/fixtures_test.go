//go:build unit

package commands_test

import (
	"strings"
	"time"

	"github.com/rios0rios0/orgmirror/internal/domain/commands"
	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	doubles "github.com/rios0rios0/orgmirror/test/infrastructure/repositorydoubles"
)

const (
	sourceOrg      = "upstream"
	destinationOrg = "downstream"
)

// sha expands a short seed such as "a1" into a full 40-character object id.
func sha(seed string) string {
	return strings.Repeat(seed, 40/len(seed))
}

func branch(name, seed string) entities.Reference {
	return entities.Reference{Key: entities.BranchKey(name), SHA: sha(seed)}
}

func tag(name, seed string) entities.Reference {
	return entities.Reference{Key: entities.TagKey(name), SHA: sha(seed)}
}

func testSettings() *entities.Settings {
	settings := entities.DefaultSettings()
	settings.Token = "ghp_test"
	settings.SourceOrg = sourceOrg
	settings.DestinationOrg = destinationOrg
	return &settings
}

// fakeClock advances virtual time by exactly the requested duration on every wait.
type fakeClock struct {
	current time.Time
	waits   []time.Duration
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) after(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	c.current = c.current.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.current
	return ch
}

func newGovernor(metrics *doubles.SpyMetricsRepository) *commands.RateGovernor {
	return commands.NewRateGovernor(testSettings(), metrics)
}
