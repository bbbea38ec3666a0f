//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, fakes) for
// repository interfaces. They are hand-written, no mock frameworks are involved.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

// HostedRepository is one repository held by InMemoryHostRepository.
type HostedRepository struct {
	Repository entities.Repository
	Refs       map[entities.RefKey]string
}

// RefWrite records one CreateRef or UpdateRef call.
type RefWrite struct {
	Repo    string
	Path    string
	SHA     string
	Created bool
	Force   bool
}

// InMemoryHostRepository implements repositories.HostRepository over in-memory
// organizations. Forks copy refs and writes mutate them, so multi-pass behaviour can
// be observed end to end.
type InMemoryHostRepository struct {
	orgs   map[string][]*HostedRepository
	nextID int64

	// --- RateLimit ---
	Rate entities.RateLimitState

	// --- error injection ---
	ListErr      error
	GetErr       error
	ListRefsErr  error
	ForkErrs     map[string]error // repository name -> error returned by CreateFork
	RefWriteErrs map[string]error // ref name -> error returned once by CreateRef/UpdateRef

	// --- hooks ---
	// BeforeListBranches runs each time branches are listed; tests use it to push
	// upstream in the middle of a pass.
	BeforeListBranches func(repo entities.Repository)

	// --- spies ---
	Forks       []string
	RefWrites   []RefWrite
	GetCalls    int
	BranchLists int
}

var _ repositories.HostRepository = (*InMemoryHostRepository)(nil)

// NewInMemoryHostRepository creates an empty host with an unknown rate limit.
func NewInMemoryHostRepository() *InMemoryHostRepository {
	return &InMemoryHostRepository{
		orgs:         make(map[string][]*HostedRepository),
		nextID:       1000,
		ForkErrs:     make(map[string]error),
		RefWriteErrs: make(map[string]error),
	}
}

// Add stores repo under its organization with the given refs and returns it.
func (h *InMemoryHostRepository) Add(repo entities.Repository, refs ...entities.Reference) *HostedRepository {
	hosted := &HostedRepository{Repository: repo, Refs: make(map[entities.RefKey]string)}
	for _, ref := range refs {
		hosted.Refs[ref.Key] = ref.SHA
	}
	h.orgs[repo.Organization] = append(h.orgs[repo.Organization], hosted)
	return hosted
}

// Find returns the repository named name in org, or nil.
func (h *InMemoryHostRepository) Find(org, name string) *HostedRepository {
	for _, hosted := range h.orgs[org] {
		if hosted.Repository.Name == name {
			return hosted
		}
	}
	return nil
}

// Push moves ref in org/name and advances the repository's push time by a minute.
func (h *InMemoryHostRepository) Push(org, name string, ref entities.Reference) {
	hosted := h.mustFind(org, name)
	hosted.Refs[ref.Key] = ref.SHA
	hosted.Repository.PushedAt = hosted.Repository.PushedAt.Add(time.Minute)
}

func (h *InMemoryHostRepository) Name() string { return "in-memory" }

func (h *InMemoryHostRepository) RateLimit() entities.RateLimitState { return h.Rate }

func (h *InMemoryHostRepository) ListRepositories(
	_ context.Context, org string,
) ([]entities.Repository, error) {
	if h.ListErr != nil {
		return nil, h.ListErr
	}
	repos := make([]entities.Repository, 0, len(h.orgs[org]))
	for _, hosted := range h.orgs[org] {
		repos = append(repos, hosted.Repository)
	}
	return repos, nil
}

func (h *InMemoryHostRepository) GetRepository(
	_ context.Context, org, name string,
) (entities.Repository, error) {
	h.GetCalls++
	if h.GetErr != nil {
		return entities.Repository{}, h.GetErr
	}
	hosted := h.Find(org, name)
	if hosted == nil {
		return entities.Repository{}, fmt.Errorf("repository %s/%s not found", org, name)
	}
	return hosted.Repository, nil
}

func (h *InMemoryHostRepository) ListBranches(
	_ context.Context, repo entities.Repository,
) ([]entities.Reference, error) {
	h.BranchLists++
	if h.BeforeListBranches != nil {
		h.BeforeListBranches(repo)
	}
	return h.refsOfKind(repo, entities.RefKindBranch), nil
}

func (h *InMemoryHostRepository) ListTags(
	_ context.Context, repo entities.Repository,
) ([]entities.Reference, error) {
	return h.refsOfKind(repo, entities.RefKindTag), nil
}

func (h *InMemoryHostRepository) ListRefs(
	_ context.Context, repo entities.Repository,
) ([]entities.Reference, error) {
	if h.ListRefsErr != nil {
		return nil, h.ListRefsErr
	}
	refs := h.refsOfKind(repo, entities.RefKindBranch)
	refs = append(refs, h.refsOfKind(repo, entities.RefKindTag)...)
	return refs, nil
}

func (h *InMemoryHostRepository) CreateRef(
	_ context.Context, repo entities.Repository, ref entities.Reference,
) error {
	return h.write(repo, ref, true, false)
}

func (h *InMemoryHostRepository) UpdateRef(
	_ context.Context, repo entities.Repository, ref entities.Reference, force bool,
) error {
	return h.write(repo, ref, false, force)
}

func (h *InMemoryHostRepository) CreateFork(
	_ context.Context, source entities.Repository, destinationOrg string,
) error {
	h.Forks = append(h.Forks, source.Name)
	if err := h.ForkErrs[source.Name]; err != nil {
		return err
	}

	upstream := h.mustFind(source.Organization, source.Name)
	h.nextID++
	hosted := h.Add(entities.Repository{
		ID:           h.nextID,
		Name:         source.Name,
		Organization: destinationOrg,
		PushedAt:     upstream.Repository.PushedAt,
		HasContent:   upstream.Repository.HasContent,
	})
	for key, sha := range upstream.Refs {
		hosted.Refs[key] = sha
	}
	return nil
}

func (h *InMemoryHostRepository) write(repo entities.Repository, ref entities.Reference, created, force bool) error {
	path := ref.Key.RefName()
	h.RefWrites = append(h.RefWrites, RefWrite{
		Repo:    repo.FullName(),
		Path:    path,
		SHA:     ref.SHA,
		Created: created,
		Force:   force,
	})

	if err, ok := h.RefWriteErrs[path]; ok {
		delete(h.RefWriteErrs, path)
		return err
	}

	hosted := h.mustFind(repo.Organization, repo.Name)
	_, exists := hosted.Refs[ref.Key]
	if created && exists {
		return fmt.Errorf("reference %s already exists", path)
	}
	if !created && !exists {
		return fmt.Errorf("reference %s does not exist", path)
	}
	hosted.Refs[ref.Key] = ref.SHA
	return nil
}

func (h *InMemoryHostRepository) refsOfKind(repo entities.Repository, kind entities.RefKind) []entities.Reference {
	hosted := h.mustFind(repo.Organization, repo.Name)
	var refs []entities.Reference
	for key, sha := range hosted.Refs {
		if key.Kind == kind {
			refs = append(refs, entities.Reference{Key: key, SHA: sha})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key.Name < refs[j].Key.Name })
	return refs
}

func (h *InMemoryHostRepository) mustFind(org, name string) *HostedRepository {
	hosted := h.Find(org, name)
	if hosted == nil {
		panic(fmt.Sprintf("in-memory host has no repository %s/%s", org, name))
	}
	return hosted
}
