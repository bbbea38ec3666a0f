package repositories

import (
	"time"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

// MetricsRepository records what a mirror run did.
type MetricsRepository interface {
	RecordRepository(outcome entities.RepositoryOutcome)
	// RecordSync records one consistency loop: how many passes it ran and what they wrote.
	RecordSync(passes int, refs entities.PassResult)
	RecordWait(waited time.Duration)
	// Flush writes the collected metrics to path.
	Flush(path string) error
}
