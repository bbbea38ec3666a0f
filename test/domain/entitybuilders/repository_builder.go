//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
)

//nolint:gochecknoglobals // fixed reference time for deterministic push timestamps
var defaultPushedAt = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// RepositoryBuilder helps create test repositories with a fluent interface.
type RepositoryBuilder struct {
	*testkit.BaseBuilder
	id           int64
	name         string
	organization string
	pushedAt     time.Time
	hasContent   bool
}

// NewRepositoryBuilder creates a new repository builder with sensible defaults.
func NewRepositoryBuilder() *RepositoryBuilder {
	return &RepositoryBuilder{
		BaseBuilder:  testkit.NewBaseBuilder(),
		id:           1,
		name:         "R",
		organization: "upstream",
		pushedAt:     defaultPushedAt,
		hasContent:   true,
	}
}

// WithID sets the host identifier.
func (b *RepositoryBuilder) WithID(id int64) *RepositoryBuilder {
	b.id = id
	return b
}

// WithName sets the repository name.
func (b *RepositoryBuilder) WithName(name string) *RepositoryBuilder {
	b.name = name
	return b
}

// WithOrganization sets the owning organization.
func (b *RepositoryBuilder) WithOrganization(org string) *RepositoryBuilder {
	b.organization = org
	return b
}

// WithPushedAt sets the last push time.
func (b *RepositoryBuilder) WithPushedAt(pushedAt time.Time) *RepositoryBuilder {
	b.pushedAt = pushedAt
	return b
}

// PushedMinutesAfter sets the push time to the default plus the given minutes.
func (b *RepositoryBuilder) PushedMinutesAfter(minutes int) *RepositoryBuilder {
	b.pushedAt = defaultPushedAt.Add(time.Duration(minutes) * time.Minute)
	return b
}

// Empty marks the repository as having no git content.
func (b *RepositoryBuilder) Empty() *RepositoryBuilder {
	b.hasContent = false
	return b
}

// Build creates the repository (satisfies testkit.Builder interface).
func (b *RepositoryBuilder) Build() interface{} {
	return b.BuildRepository()
}

// BuildRepository creates the repository with a concrete return type.
func (b *RepositoryBuilder) BuildRepository() entities.Repository {
	return entities.Repository{
		ID:           b.id,
		Name:         b.name,
		Organization: b.organization,
		PushedAt:     b.pushedAt,
		HasContent:   b.hasContent,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepositoryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.id = 1
	b.name = "R"
	b.organization = "upstream"
	b.pushedAt = defaultPushedAt
	b.hasContent = true
	return b
}

// Clone creates a deep copy of the RepositoryBuilder.
func (b *RepositoryBuilder) Clone() testkit.Builder {
	return &RepositoryBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		id:           b.id,
		name:         b.name,
		organization: b.organization,
		pushedAt:     b.pushedAt,
		hasContent:   b.hasContent,
	}
}
