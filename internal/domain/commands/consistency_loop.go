package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

// LoopState is the state of the consistency loop for one repository pair.
type LoopState string

const (
	LoopScanning LoopState = "scanning"
	LoopStable   LoopState = "stable"
	LoopAborted  LoopState = "aborted"
)

// LoopOptions tunes one Converge call.
type LoopOptions struct {
	DryRun bool
	// MaxPasses bounds the number of passes; zero keeps retrying for as long as the
	// source keeps moving.
	MaxPasses int
}

// LoopResult describes how a Converge call ended.
type LoopResult struct {
	State  LoopState
	Passes int
	Refs   entities.PassResult
}

// ConsistencyLoop repeats reconciliation passes until one completes without the
// source having moved underneath it.
type ConsistencyLoop struct {
	host       repositories.HostRepository
	governor   *RateGovernor
	reconciler *RefReconciler
}

// NewConsistencyLoop creates a ConsistencyLoop.
func NewConsistencyLoop(
	host repositories.HostRepository,
	governor *RateGovernor,
	reconciler *RefReconciler,
) *ConsistencyLoop {
	return &ConsistencyLoop{host: host, governor: governor, reconciler: reconciler}
}

// Converge drives source onto destination. A pass that changes nothing ends in
// LoopStable. A pass that changed refs re-reads the source: a new identity aborts
// with entities.ErrUpstreamIdentityMismatch, a new push time triggers another pass,
// and an unchanged source ends in LoopStable.
func (it *ConsistencyLoop) Converge(
	ctx context.Context,
	source, destination entities.Repository,
	opts LoopOptions,
) (LoopResult, error) {
	result := LoopResult{State: LoopScanning}
	current := source

	for result.State == LoopScanning {
		if opts.MaxPasses > 0 && result.Passes >= opts.MaxPasses {
			result.State = LoopAborted
			return result, fmt.Errorf(
				"%w: %s still moving after %d passes", entities.ErrRetryBudgetExhausted, current.FullName(), result.Passes,
			)
		}

		snapshotID, snapshotPushedAt := current.ID, current.PushedAt

		pass, err := it.reconciler.ReconcileOnce(ctx, current, destination, opts.DryRun)
		result.Passes++
		result.Refs = result.Refs.Merge(pass)
		if err != nil {
			result.State = LoopAborted
			return result, err
		}

		// pull requests bump the push time too, so only re-check when refs were written
		if !pass.Changed() || opts.DryRun {
			result.State = LoopStable
			break
		}

		if govErr := it.governor.EnsureCapacity(ctx, it.host.RateLimit()); govErr != nil {
			result.State = LoopAborted
			return result, govErr
		}
		refreshed, err := it.host.GetRepository(ctx, current.Organization, current.Name)
		if err != nil {
			result.State = LoopAborted
			return result, fmt.Errorf("failed to refresh %s: %w", current.FullName(), err)
		}

		switch {
		case refreshed.ID != snapshotID:
			logger.Errorf(" * Got a different repository while retrying %s (id %d, expected %d)",
				current.FullName(), refreshed.ID, snapshotID)
			result.State = LoopAborted
			return result, fmt.Errorf("%w: %s resolved to id %d, expected %d",
				entities.ErrUpstreamIdentityMismatch, current.FullName(), refreshed.ID, snapshotID)
		case !refreshed.PushedAt.Equal(snapshotPushedAt):
			logger.Warnf(" * Upstream %s was pushed while updating, retrying...", current.FullName())
			current = refreshed
		default:
			result.State = LoopStable
		}
	}

	return result, nil
}
