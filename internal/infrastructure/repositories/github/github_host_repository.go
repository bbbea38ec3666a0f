package github

import (
	"context"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

const (
	hostName   = "github"
	visibility = "public"
)

// GitHubHostRepository implements repositories.HostRepository for GitHub and GitHub Enterprise.
type GitHubHostRepository struct {
	client  *gh.Client
	perPage int
	rate    entities.RateLimitState
}

// NewHostRepository creates a GitHub host authenticated with the settings token.
// A non-empty BaseURL points the client at a GitHub Enterprise server.
func NewHostRepository(settings *entities.Settings) (repositories.HostRepository, error) {
	client := gh.NewClient(nil).WithAuthToken(settings.Token)
	if settings.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(settings.BaseURL, settings.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", settings.BaseURL, err)
		}
	}
	return newGitHubHostRepository(client, settings.PerPage), nil
}

func newGitHubHostRepository(client *gh.Client, perPage int) *GitHubHostRepository {
	if perPage <= 0 {
		perPage = entities.DefaultPerPage
	}
	return &GitHubHostRepository{client: client, perPage: perPage}
}

func (p *GitHubHostRepository) Name() string { return hostName }

func (p *GitHubHostRepository) RateLimit() entities.RateLimitState { return p.rate }

// ListRepositories lists the public repositories of an organization.
func (p *GitHubHostRepository) ListRepositories(
	ctx context.Context,
	org string,
) ([]entities.Repository, error) {
	var allRepos []entities.Repository
	opts := &gh.RepositoryListByOrgOptions{
		Type:        visibility,
		ListOptions: gh.ListOptions{PerPage: p.perPage},
	}

	for {
		repos, resp, err := p.client.Repositories.ListByOrg(ctx, org, opts)
		p.observe(resp)
		if err != nil {
			return nil, classifyError(opRead, fmt.Sprintf("list repositories of %q", org), err)
		}

		for _, r := range repos {
			allRepos = append(allRepos, toRepository(r, org))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

func (p *GitHubHostRepository) GetRepository(
	ctx context.Context,
	org, name string,
) (entities.Repository, error) {
	repo, resp, err := p.client.Repositories.Get(ctx, org, name)
	p.observe(resp)
	if err != nil {
		return entities.Repository{}, classifyError(opRead, fmt.Sprintf("get repository %s/%s", org, name), err)
	}
	return toRepository(repo, org), nil
}

func (p *GitHubHostRepository) ListBranches(
	ctx context.Context,
	repo entities.Repository,
) ([]entities.Reference, error) {
	var refs []entities.Reference
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: p.perPage}}

	for {
		branches, resp, err := p.client.Repositories.ListBranches(ctx, repo.Organization, repo.Name, opts)
		p.observe(resp)
		if err != nil {
			return nil, classifyError(opRead, "list branches of "+repo.FullName(), err)
		}

		for _, b := range branches {
			refs = append(refs, entities.Reference{
				Key: entities.BranchKey(b.GetName()),
				SHA: b.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

func (p *GitHubHostRepository) ListTags(
	ctx context.Context,
	repo entities.Repository,
) ([]entities.Reference, error) {
	var refs []entities.Reference
	opts := &gh.ListOptions{PerPage: p.perPage}

	for {
		tags, resp, err := p.client.Repositories.ListTags(ctx, repo.Organization, repo.Name, opts)
		p.observe(resp)
		if err != nil {
			return nil, classifyError(opRead, "list tags of "+repo.FullName(), err)
		}

		for _, tag := range tags {
			refs = append(refs, entities.Reference{
				Key: entities.TagKey(tag.GetName()),
				SHA: tag.GetCommit().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

// ListRefs returns the branch and tag refs of a repository. Other namespaces
// (pull request heads, notes) are ignored.
func (p *GitHubHostRepository) ListRefs(
	ctx context.Context,
	repo entities.Repository,
) ([]entities.Reference, error) {
	var refs []entities.Reference
	opts := &gh.ReferenceListOptions{ListOptions: gh.ListOptions{PerPage: p.perPage}}

	for {
		gitRefs, resp, err := p.client.Git.ListMatchingRefs(ctx, repo.Organization, repo.Name, opts)
		p.observe(resp)
		if err != nil {
			return nil, classifyError(opRead, "list refs of "+repo.FullName(), err)
		}

		for _, r := range gitRefs {
			key, ok := entities.ParseRefName(r.GetRef())
			if !ok {
				logger.Debugf("Ignoring ref %s of %s", r.GetRef(), repo.FullName())
				continue
			}
			refs = append(refs, entities.Reference{Key: key, SHA: r.GetObject().GetSHA()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

func (p *GitHubHostRepository) CreateRef(
	ctx context.Context,
	repo entities.Repository,
	ref entities.Reference,
) error {
	_, resp, err := p.client.Git.CreateRef(ctx, repo.Organization, repo.Name, toGitReference(ref))
	p.observe(resp)
	if err != nil {
		return classifyError(opRefWrite, fmt.Sprintf("create %s on %s", ref.Key.RefName(), repo.FullName()), err)
	}
	return nil
}

func (p *GitHubHostRepository) UpdateRef(
	ctx context.Context,
	repo entities.Repository,
	ref entities.Reference,
	force bool,
) error {
	_, resp, err := p.client.Git.UpdateRef(ctx, repo.Organization, repo.Name, toGitReference(ref), force)
	p.observe(resp)
	if err != nil {
		return classifyError(opRefWrite, fmt.Sprintf("update %s on %s", ref.Key.RefName(), repo.FullName()), err)
	}
	return nil
}

// CreateFork asks GitHub to fork source into destinationOrg. GitHub answers 202 and
// finishes the fork asynchronously; that is treated as success.
func (p *GitHubHostRepository) CreateFork(
	ctx context.Context,
	source entities.Repository,
	destinationOrg string,
) error {
	_, resp, err := p.client.Repositories.CreateFork(
		ctx, source.Organization, source.Name,
		&gh.RepositoryCreateForkOptions{Organization: destinationOrg},
	)
	p.observe(resp)

	var accepted *gh.AcceptedError
	if err == nil || errors.As(err, &accepted) {
		return nil
	}
	return classifyError(opFork, fmt.Sprintf("fork %s into %s", source.FullName(), destinationOrg), err)
}

// observe keeps the quota reported by the latest response, including error responses.
func (p *GitHubHostRepository) observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	p.rate = entities.RateLimitState{
		Remaining: resp.Rate.Remaining,
		Total:     resp.Rate.Limit,
		ResetAt:   resp.Rate.Reset.Time,
	}
}

func toRepository(r *gh.Repository, org string) entities.Repository {
	owner := r.GetOwner().GetLogin()
	if owner == "" {
		owner = org
	}
	return entities.Repository{
		ID:           r.GetID(),
		Name:         r.GetName(),
		Organization: owner,
		PushedAt:     r.GetPushedAt().Time,
		HasContent:   r.GetSize() > 0,
	}
}

func toGitReference(ref entities.Reference) *gh.Reference {
	return &gh.Reference{
		Ref:    gh.String(ref.Key.RefName()),
		Object: &gh.GitObject{SHA: gh.String(ref.SHA)},
	}
}
