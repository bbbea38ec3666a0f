package repositories

import (
	"context"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

// HostRepository abstracts the code-hosting service both organizations live on.
// Implementations classify their failures into the sentinel errors of the entities
// package; anything left unclassified is fatal to the run.
type HostRepository interface {
	// Name returns the host identifier (e.g. "github").
	Name() string

	// ListRepositories lists the public repositories of an organization in host order.
	ListRepositories(ctx context.Context, org string) ([]entities.Repository, error)

	// GetRepository fetches a fresh snapshot of one repository by name.
	GetRepository(ctx context.Context, org, name string) (entities.Repository, error)

	// ListBranches returns the branches of a repository with the commits they point at.
	ListBranches(ctx context.Context, repo entities.Repository) ([]entities.Reference, error)

	// ListTags returns the tags of a repository with the commits they point at.
	ListTags(ctx context.Context, repo entities.Repository) ([]entities.Reference, error)

	// ListRefs returns every branch and tag ref stored in a repository.
	ListRefs(ctx context.Context, repo entities.Repository) ([]entities.Reference, error)

	// CreateRef creates a new ref. A validation rejection wraps entities.ErrTransientRefConflict.
	CreateRef(ctx context.Context, repo entities.Repository, ref entities.Reference) error

	// UpdateRef moves an existing ref, allowing non-fast-forward moves when force is set.
	// A validation rejection wraps entities.ErrTransientRefConflict.
	UpdateRef(ctx context.Context, repo entities.Repository, ref entities.Reference, force bool) error

	// CreateFork requests a fork of source into destinationOrg. A source without git
	// content wraps entities.ErrEmptyRepository.
	CreateFork(ctx context.Context, source entities.Repository, destinationOrg string) error

	// RateLimit returns the quota reported alongside the most recent call.
	RateLimit() entities.RateLimitState
}
