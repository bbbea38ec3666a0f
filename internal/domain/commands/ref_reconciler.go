package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

type refAction int

const (
	refUnchanged refAction = iota
	refCreated
	refUpdated
	refDeferred
	refSkipped
)

// RefReconciler copies the branches and tags of a source repository onto its mirror.
// Every write is destination-authoritative: refs that moved upstream are force-updated.
type RefReconciler struct {
	host     repositories.HostRepository
	governor *RateGovernor
}

// NewRefReconciler creates a RefReconciler.
func NewRefReconciler(host repositories.HostRepository, governor *RateGovernor) *RefReconciler {
	return &RefReconciler{host: host, governor: governor}
}

// ReconcileOnce runs one full pass over all source branches then all source tags.
// Writes rejected as transient conflicts are counted as deferred and left for the next
// pass; any other host failure aborts the pass.
func (it *RefReconciler) ReconcileOnce(
	ctx context.Context,
	source, destination entities.Repository,
	dryRun bool,
) (entities.PassResult, error) {
	var result entities.PassResult

	if err := it.governor.EnsureCapacity(ctx, it.host.RateLimit()); err != nil {
		return result, err
	}
	destinationRefs, err := it.host.ListRefs(ctx, destination)
	if err != nil {
		return result, fmt.Errorf("failed to list refs of %s: %w", destination.FullName(), err)
	}
	existing := entities.NewRefSet(destinationRefs)

	listers := []struct {
		what string
		list func(context.Context, entities.Repository) ([]entities.Reference, error)
	}{
		{what: "branches", list: it.host.ListBranches},
		{what: "tags", list: it.host.ListTags},
	}

	for _, lister := range listers {
		if govErr := it.governor.EnsureCapacity(ctx, it.host.RateLimit()); govErr != nil {
			return result, govErr
		}
		sourceRefs, listErr := lister.list(ctx, source)
		if listErr != nil {
			return result, fmt.Errorf("failed to list %s of %s: %w", lister.what, source.FullName(), listErr)
		}

		for _, ref := range sourceRefs {
			action, copyErr := it.copyRef(ctx, destination, ref, existing, dryRun)
			if copyErr != nil {
				return result, copyErr
			}
			result = tally(result, action)
		}
	}

	return result, nil
}

func (it *RefReconciler) copyRef(
	ctx context.Context,
	destination entities.Repository,
	ref entities.Reference,
	existing entities.RefSet,
	dryRun bool,
) (refAction, error) {
	if !ref.HasValidSHA() {
		logger.Warnf(" - %s has no usable commit (%q), skipping", ref.Key, ref.SHA)
		return refSkipped, nil
	}

	current, found := existing.Lookup(ref.Key)
	if found && current.SHA == ref.SHA {
		logger.Debugf(" - %s", ref.Key.Name)
		return refUnchanged, nil
	}

	action := refCreated
	label := "new"
	if found {
		action = refUpdated
		label = "updated"
	}
	logger.Infof(" - %s (%s)", ref.Key.Name, label)

	if dryRun {
		return action, nil
	}

	if err := it.governor.EnsureCapacity(ctx, it.host.RateLimit()); err != nil {
		return refUnchanged, err
	}

	var err error
	if found {
		err = it.host.UpdateRef(ctx, destination, ref, true)
	} else {
		err = it.host.CreateRef(ctx, destination, ref)
	}

	switch {
	case err == nil:
		return action, nil
	case errors.Is(err, entities.ErrTransientRefConflict):
		logger.Warnf(" * Host hit a transient validation error on %s, ignoring for now: %v", ref.Key.RefName(), err)
		return refDeferred, nil
	default:
		return refUnchanged, fmt.Errorf("failed to write %s on %s: %w", ref.Key.RefName(), destination.FullName(), err)
	}
}

func tally(result entities.PassResult, action refAction) entities.PassResult {
	switch action {
	case refCreated:
		result.Created++
	case refUpdated:
		result.Updated++
	case refDeferred:
		result.Deferred++
	case refSkipped:
		result.Skipped++
	case refUnchanged:
		result.Unchanged++
	}
	return result
}
