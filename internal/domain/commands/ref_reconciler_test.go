//go:build unit

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/orgmirror/internal/domain/commands"
	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	builders "github.com/rios0rios0/orgmirror/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/orgmirror/test/infrastructure/repositorydoubles"
)

// mirroredPair seeds host with upstream/R and its mirror downstream/R.
func mirroredPair(
	host *doubles.InMemoryHostRepository,
	sourceRefs, destinationRefs []entities.Reference,
) (entities.Repository, entities.Repository) {
	source := builders.NewRepositoryBuilder().PushedMinutesAfter(10).BuildRepository()
	destination := builders.NewRepositoryBuilder().WithID(2).WithOrganization(destinationOrg).BuildRepository()
	host.Add(source, sourceRefs...)
	host.Add(destination, destinationRefs...)
	return source, destination
}

func TestRefReconcilerReconcileOnce(t *testing.T) {
	t.Parallel()

	t.Run("should issue no write when every SHA already matches", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		refs := []entities.Reference{branch("main", "a1"), tag("v1", "b2")}
		source, destination := mirroredPair(host, refs, refs)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		result, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.NoError(t, err)
		assert.False(t, result.Changed())
		assert.Equal(t, 2, result.Unchanged)
		assert.Empty(t, host.RefWrites)
	})

	t.Run("should create refs missing downstream", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host,
			[]entities.Reference{branch("main", "a1"), branch("feature/x", "c3"), tag("v1", "b2")},
			[]entities.Reference{branch("main", "a1")},
		)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		result, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.PassResult{Created: 2, Unchanged: 1}, result)
		mirror := host.Find(destinationOrg, "R")
		assert.Equal(t, sha("c3"), mirror.Refs[entities.BranchKey("feature/x")])
		assert.Equal(t, sha("b2"), mirror.Refs[entities.TagKey("v1")])
		for _, write := range host.RefWrites {
			assert.True(t, write.Created, write.Path)
		}
	})

	t.Run("should force-update refs that moved upstream", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host,
			[]entities.Reference{branch("main", "a2")},
			[]entities.Reference{branch("main", "a1")},
		)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		result, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.PassResult{Updated: 1}, result)
		require.Len(t, host.RefWrites, 1)
		assert.Equal(t, doubles.RefWrite{
			Repo: "downstream/R", Path: "refs/heads/main", SHA: sha("a2"), Created: false, Force: true,
		}, host.RefWrites[0])
		assert.Equal(t, sha("a2"), host.Find(destinationOrg, "R").Refs[entities.BranchKey("main")])
	})

	t.Run("should defer a ref rejected as a transient conflict", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host,
			[]entities.Reference{branch("main", "a2"), tag("v1", "b2")},
			[]entities.Reference{branch("main", "a1")},
		)
		host.RefWriteErrs["refs/heads/main"] = fmt.Errorf("422: %w", entities.ErrTransientRefConflict)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		result, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.PassResult{Created: 1, Deferred: 1}, result)
		assert.Equal(t, sha("a1"), host.Find(destinationOrg, "R").Refs[entities.BranchKey("main")])
	})

	t.Run("should abort the pass on any other write failure", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host,
			[]entities.Reference{branch("main", "a2"), tag("v1", "b2")},
			[]entities.Reference{},
		)
		host.RefWriteErrs["refs/heads/main"] = errors.New("500 internal server error")
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		_, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refs/heads/main")
		assert.Len(t, host.RefWrites, 1, "tags are not attempted after a fatal branch failure")
	})

	t.Run("should fail when destination refs cannot be listed", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host, nil, nil)
		host.ListRefsErr = errors.New("502 bad gateway")
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		_, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list refs of downstream/R")
	})

	t.Run("should skip refs without a usable SHA", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		broken := entities.Reference{Key: entities.BranchKey("broken"), SHA: "a1"}
		source, destination := mirroredPair(host, []entities.Reference{broken}, nil)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		result, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.PassResult{Skipped: 1}, result)
		assert.Empty(t, host.RefWrites)
	})

	t.Run("should report no change on a second pass without upstream change", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host,
			[]entities.Reference{branch("main", "a2"), branch("dev", "c3"), tag("v1", "b2")},
			[]entities.Reference{branch("main", "a1")},
		)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))
		first, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)
		require.NoError(t, err)
		writes := len(host.RefWrites)

		// when
		second, err := reconciler.ReconcileOnce(context.Background(), source, destination, false)

		// then
		require.NoError(t, err)
		assert.True(t, first.Changed())
		assert.False(t, second.Changed())
		assert.Len(t, host.RefWrites, writes)
	})

	t.Run("should count but not write changes on a dry run", func(t *testing.T) {
		t.Parallel()

		// given
		host := doubles.NewInMemoryHostRepository()
		source, destination := mirroredPair(host,
			[]entities.Reference{branch("main", "a2"), tag("v1", "b2")},
			[]entities.Reference{branch("main", "a1")},
		)
		reconciler := commands.NewRefReconciler(host, newGovernor(&doubles.SpyMetricsRepository{}))

		// when
		result, err := reconciler.ReconcileOnce(context.Background(), source, destination, true)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.PassResult{Created: 1, Updated: 1}, result)
		assert.Empty(t, host.RefWrites)
	})
}
