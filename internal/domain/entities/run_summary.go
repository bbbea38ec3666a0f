package entities

// RepositoryOutcome is what the orchestrator did with one source repository.
type RepositoryOutcome string

const (
	OutcomeForked       RepositoryOutcome = "forked"
	OutcomeSkippedEmpty RepositoryOutcome = "skipped_empty"
	OutcomeUpToDate     RepositoryOutcome = "up_to_date"
	OutcomeSynced       RepositoryOutcome = "synced"
	OutcomeAborted      RepositoryOutcome = "aborted"
)

// RunSummary aggregates one mirror run.
type RunSummary struct {
	Repositories map[RepositoryOutcome]int
	Refs         PassResult
	Passes       int
}

// NewRunSummary returns an empty summary.
func NewRunSummary() RunSummary {
	return RunSummary{Repositories: make(map[RepositoryOutcome]int)}
}

// Record counts one repository outcome.
func (s *RunSummary) Record(outcome RepositoryOutcome) {
	s.Repositories[outcome]++
}

// Processed returns the number of source repositories visited.
func (s *RunSummary) Processed() int {
	total := 0
	for _, count := range s.Repositories {
		total += count
	}
	return total
}
