package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

// ForkOutcome is the result of EnsureForked.
type ForkOutcome string

const (
	ForkExisting     ForkOutcome = "existing"
	ForkRequested    ForkOutcome = "requested"
	ForkSkippedEmpty ForkOutcome = "skipped_empty"
)

// ForkInitiator creates the initial mirror of repositories missing downstream.
type ForkInitiator struct {
	host     repositories.HostRepository
	governor *RateGovernor
}

// NewForkInitiator creates a ForkInitiator.
func NewForkInitiator(host repositories.HostRepository, governor *RateGovernor) *ForkInitiator {
	return &ForkInitiator{host: host, governor: governor}
}

// EnsureForked requests a fork of source into destinationOrg unless a repository of the
// same name is already in existing. The new fork is not added to existing.
func (it *ForkInitiator) EnsureForked(
	ctx context.Context,
	source entities.Repository,
	destinationOrg string,
	existing map[string]entities.Repository,
	dryRun bool,
) (ForkOutcome, error) {
	if _, ok := existing[source.Name]; ok {
		return ForkExisting, nil
	}

	logger.Infof("Forking %s into %s...", source.FullName(), destinationOrg)
	if !source.HasContent {
		// size can lag behind pushes, so the host decides whether the fork is refused
		logger.Infof(" * %s reports no content, the fork may be refused", source.Name)
	}
	if dryRun {
		logger.Infof(" * dry run, fork of %s not requested", source.Name)
		return ForkRequested, nil
	}

	if err := it.governor.EnsureCapacity(ctx, it.host.RateLimit()); err != nil {
		return "", err
	}

	if err := it.host.CreateFork(ctx, source, destinationOrg); err != nil {
		if errors.Is(err, entities.ErrEmptyRepository) {
			logger.Infof(" * Skipping empty repository %s", source.Name)
			return ForkSkippedEmpty, nil
		}
		return "", fmt.Errorf("failed to fork %s into %s: %w", source.FullName(), destinationOrg, err)
	}

	return ForkRequested, nil
}
