//go:build unit

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/orgmirror/internal/domain/commands"
	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	builders "github.com/rios0rios0/orgmirror/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/orgmirror/test/infrastructure/repositorydoubles"
)

func TestForkInitiatorEnsureForked(t *testing.T) {
	t.Parallel()

	t.Run("should do nothing when the repository already exists downstream", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source := builders.NewRepositoryBuilder().BuildRepository()
		host.Add(source, branch("main", "a1"))
		mirror := builders.NewRepositoryBuilder().WithID(2).WithOrganization(destinationOrg).BuildRepository()
		existing := map[string]entities.Repository{"R": mirror}
		forker := commands.NewForkInitiator(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		outcome, err := forker.EnsureForked(context.Background(), source, destinationOrg, existing, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, commands.ForkExisting, outcome)
		assert.Empty(t, host.Forks)
	})

	t.Run("should fork a repository missing downstream", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source := builders.NewRepositoryBuilder().BuildRepository()
		host.Add(source, branch("main", "a1"), tag("v1", "b2"))
		existing := map[string]entities.Repository{}
		forker := commands.NewForkInitiator(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		outcome, err := forker.EnsureForked(context.Background(), source, destinationOrg, existing, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, commands.ForkRequested, outcome)
		assert.Equal(t, []string{"R"}, host.Forks)
		require.NotNil(t, host.Find(destinationOrg, "R"))
		assert.Empty(t, existing, "the new fork is only discovered by the next run")
	})

	t.Run("should skip an empty repository without error", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source := builders.NewRepositoryBuilder().Empty().BuildRepository()
		host.Add(source)
		host.ForkErrs["R"] = fmt.Errorf("failed to fork: %w", entities.ErrEmptyRepository)
		forker := commands.NewForkInitiator(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		outcome, err := forker.EnsureForked(
			context.Background(), source, destinationOrg, map[string]entities.Repository{}, false,
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, commands.ForkSkippedEmpty, outcome)
		assert.Nil(t, host.Find(destinationOrg, "R"))
	})

	t.Run("should propagate any other fork failure", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source := builders.NewRepositoryBuilder().BuildRepository()
		host.Add(source)
		host.ForkErrs["R"] = errors.New("403 forbidden")
		forker := commands.NewForkInitiator(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		_, err := forker.EnsureForked(
			context.Background(), source, destinationOrg, map[string]entities.Repository{}, false,
		)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403 forbidden")
		assert.NotErrorIs(t, err, entities.ErrEmptyRepository)
	})

	t.Run("should not call the host on a dry run", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source := builders.NewRepositoryBuilder().BuildRepository()
		host.Add(source)
		forker := commands.NewForkInitiator(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		outcome, err := forker.EnsureForked(
			context.Background(), source, destinationOrg, map[string]entities.Repository{}, true,
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, commands.ForkRequested, outcome)
		assert.Empty(t, host.Forks)
	})
}

//nolint:paralleltest // observes the global logger
func TestForkInitiatorReportsSourcesWithoutContent(t *testing.T) {
	// given
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)
	host := doubles.NewInMemoryHostRepository()
	source := builders.NewRepositoryBuilder().WithName("sizeless").Empty().BuildRepository()
	host.Add(source)
	forker := commands.NewForkInitiator(host, newGovernor(&doubles.SpyMetricsRepository{}))

	// when
	outcome, err := forker.EnsureForked(
		context.Background(), source, destinationOrg, map[string]entities.Repository{}, false,
	)

	// then
	require.NoError(t, err)
	assert.Equal(t, commands.ForkRequested, outcome, "a zero size alone does not skip the fork")
	messages := make([]string, 0, len(hook.AllEntries()))
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, " * sizeless reports no content, the fork may be refused")
}
