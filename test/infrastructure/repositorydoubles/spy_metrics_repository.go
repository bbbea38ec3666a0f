//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

// SpyMetricsRepository implements repositories.MetricsRepository and records every call.
type SpyMetricsRepository struct {
	Outcomes []entities.RepositoryOutcome
	Passes   int
	Refs     entities.PassResult
	Waits    []time.Duration

	FlushErr     error
	FlushedPaths []string
}

var _ repositories.MetricsRepository = (*SpyMetricsRepository)(nil)

func (s *SpyMetricsRepository) RecordRepository(outcome entities.RepositoryOutcome) {
	s.Outcomes = append(s.Outcomes, outcome)
}

func (s *SpyMetricsRepository) RecordSync(passes int, refs entities.PassResult) {
	s.Passes += passes
	s.Refs = s.Refs.Merge(refs)
}

func (s *SpyMetricsRepository) RecordWait(waited time.Duration) {
	s.Waits = append(s.Waits, waited)
}

func (s *SpyMetricsRepository) Flush(path string) error {
	s.FlushedPaths = append(s.FlushedPaths, path)
	return s.FlushErr
}
