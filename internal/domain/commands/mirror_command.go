package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/orgmirror/internal/infrastructure/repositories"
)

// Mirror is the interface for the mirror command.
type Mirror interface {
	Execute(ctx context.Context, settings *entities.Settings, opts MirrorOptions) (entities.RunSummary, error)
}

// MirrorOptions holds runtime options for a single run.
type MirrorOptions struct {
	DryRun  bool
	Verbose bool
}

// MirrorCommand walks every public repository of the source organization and
// forks or synchronizes it into the destination organization.
type MirrorCommand struct {
	hostRegistry *infraRepos.HostRegistry
	metrics      repositories.MetricsRepository
}

// NewMirrorCommand creates a new MirrorCommand.
func NewMirrorCommand(
	hostRegistry *infraRepos.HostRegistry,
	metrics repositories.MetricsRepository,
) *MirrorCommand {
	return &MirrorCommand{
		hostRegistry: hostRegistry,
		metrics:      metrics,
	}
}

// Execute runs one full mirror pass. Repositories are processed one at a time in the
// host's listing order; the first fatal error stops the run and is returned together
// with the summary of what was done before it.
func (it *MirrorCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts MirrorOptions,
) (entities.RunSummary, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	summary := entities.NewRunSummary()

	host, err := it.hostRegistry.Get(settings.Provider, settings)
	if err != nil {
		return summary, err
	}

	governor := NewRateGovernor(settings, it.metrics)
	run := &mirrorRun{
		host:     host,
		governor: governor,
		forker:   NewForkInitiator(host, governor),
		loop:     NewConsistencyLoop(host, governor, NewRefReconciler(host, governor)),
		metrics:  it.metrics,
		settings: settings,
		opts:     opts,
		summary:  &summary,
	}

	logger.Infof("Mirroring public repositories of %q into %q on %s", settings.SourceOrg, settings.DestinationOrg, host.Name())
	if opts.DryRun {
		logger.Info("Dry run: no fork or ref will be written")
	}

	if govErr := governor.EnsureCapacity(ctx, host.RateLimit()); govErr != nil {
		return summary, govErr
	}
	destinationRepos, err := host.ListRepositories(ctx, settings.DestinationOrg)
	if err != nil {
		return summary, fmt.Errorf("failed to list repositories of %q: %w", settings.DestinationOrg, err)
	}
	existing := lo.KeyBy(destinationRepos, func(repo entities.Repository) string {
		return repo.Name
	})

	if govErr := governor.EnsureCapacity(ctx, host.RateLimit()); govErr != nil {
		return summary, govErr
	}
	sourceRepos, err := host.ListRepositories(ctx, settings.SourceOrg)
	if err != nil {
		return summary, fmt.Errorf("failed to list repositories of %q: %w", settings.SourceOrg, err)
	}
	logger.Infof("Found %d repositories in %q and %d in %q",
		len(sourceRepos), settings.SourceOrg, len(destinationRepos), settings.DestinationOrg)

	for _, source := range sourceRepos {
		outcome, repoErr := run.processRepository(ctx, source, existing)
		summary.Record(outcome)
		it.metrics.RecordRepository(outcome)
		if repoErr != nil {
			it.finish(settings, summary)
			return summary, repoErr
		}
	}

	it.finish(settings, summary)
	return summary, nil
}

// mirrorRun carries the per-run collaborators built from the settings of one Execute call.
type mirrorRun struct {
	host     repositories.HostRepository
	governor *RateGovernor
	forker   *ForkInitiator
	loop     *ConsistencyLoop
	metrics  repositories.MetricsRepository
	settings *entities.Settings
	opts     MirrorOptions
	summary  *entities.RunSummary
}

func (it *mirrorRun) processRepository(
	ctx context.Context,
	source entities.Repository,
	existing map[string]entities.Repository,
) (entities.RepositoryOutcome, error) {
	if err := it.governor.EnsureCapacity(ctx, it.host.RateLimit()); err != nil {
		return entities.OutcomeAborted, err
	}

	destination, found := existing[source.Name]
	if !found {
		forkOutcome, err := it.forker.EnsureForked(ctx, source, it.settings.DestinationOrg, existing, it.opts.DryRun)
		if err != nil {
			return entities.OutcomeAborted, err
		}
		if forkOutcome == ForkSkippedEmpty {
			return entities.OutcomeSkippedEmpty, nil
		}
		return entities.OutcomeForked, nil
	}

	logger.Infof("Syncing %s...", source.Name)
	if !source.NewerThan(destination) {
		logger.Infof(" (%s up to date)", source.Name)
		return entities.OutcomeUpToDate, nil
	}

	result, err := it.loop.Converge(ctx, source, destination, LoopOptions{
		DryRun:    it.opts.DryRun,
		MaxPasses: it.settings.MaxPasses,
	})
	it.summary.Passes += result.Passes
	it.summary.Refs = it.summary.Refs.Merge(result.Refs)
	it.metrics.RecordSync(result.Passes, result.Refs)
	if err != nil {
		return entities.OutcomeAborted, fmt.Errorf("failed to sync %s: %w", source.FullName(), err)
	}

	logger.Infof("Synced %s in %d pass(es): %d created, %d updated, %d deferred",
		source.Name, result.Passes, result.Refs.Created, result.Refs.Updated, result.Refs.Deferred)
	return entities.OutcomeSynced, nil
}

func (it *MirrorCommand) finish(settings *entities.Settings, summary entities.RunSummary) {
	logger.Infof(
		"Run complete: %d repos processed, %d forked, %d synced, %d up to date, %d empty skipped, "+
			"%d refs created, %d refs updated, %d refs deferred",
		summary.Processed(),
		summary.Repositories[entities.OutcomeForked],
		summary.Repositories[entities.OutcomeSynced],
		summary.Repositories[entities.OutcomeUpToDate],
		summary.Repositories[entities.OutcomeSkippedEmpty],
		summary.Refs.Created, summary.Refs.Updated, summary.Refs.Deferred,
	)

	if settings.MetricsFile == "" {
		return
	}
	if err := it.metrics.Flush(settings.MetricsFile); err != nil {
		logger.Warnf("Failed to write metrics to %s: %v", settings.MetricsFile, err)
		return
	}
	logger.Debugf("Metrics written to %s", settings.MetricsFile)
}
