// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/codefl0w/gh-boards/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Fetcher defines the behavior of a gateway for fetching repository,
// user, and workflow information from GitHub. Every "not found" maps
// to an absent or zero value rather than an error; any other
// non-success status is an error.
type Fetcher interface {
	// FetchRepository returns a single repository, or nil when it does not exist.
	FetchRepository(ctx context.Context, owner, name string) (*domain.Repository, error)

	// FetchAllRepositories pages through every public repository owned
	// by owner. Zero repositories is an empty slice, not an error.
	FetchAllRepositories(ctx context.Context, owner string) ([]domain.RepoSummary, error)

	// FetchTopStarred returns up to limit repositories ordered by star
	// count descending. The revision token makes the fetch conditional:
	// when the listing is unchanged the call reports changed=false and
	// returns no repositories. limit <= 0 short-circuits without any
	// network call.
	FetchTopStarred(ctx context.Context, owner string, limit int, revision string) (repos []domain.RepoSummary, newRevision string, changed bool, err error)

	// FetchReleaseDownloadTotal sums asset download counts across every
	// release page. A repository without releases counts zero.
	FetchReleaseDownloadTotal(ctx context.Context, owner, name string) (int, error)

	// FetchUserProfile is a conditional fetch of a user's public profile.
	FetchUserProfile(ctx context.Context, user, revision string) (*domain.UserProfile, string, bool, error)

	// FetchLatestWorkflowRun is a conditional fetch of the most recent
	// run, restricted to workflowFile when given. A missing workflow is
	// a real, cacheable absence: (nil, "", true, nil).
	FetchLatestWorkflowRun(ctx context.Context, owner, repo, workflowFile, revision string) (*domain.WorkflowRun, string, bool, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.Logger
}

// allRepositoriesQuery pages through every public repository of a user.
type allRepositoriesQuery struct {
	User struct {
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Name           string
				StargazerCount int
			}
		} `graphql:"repositories(first: 100, after: $cursor, ownerAffiliations: OWNER, privacy: PUBLIC)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token is optional; without one, requests go out unauthenticated at the
// lower anonymous rate limit.
func NewGitHubGateway(token string, timeout time.Duration, logger *zap.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var transport http.RoundTripper = rateLimitWaiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func notFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func notModified(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotModified
}

func etagOf(resp *github.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header.Get("ETag")
}

// doConditional performs a GET with If-None-Match when a revision
// token is given. A 304 is not an error: the caller inspects the
// response status and v is left untouched.
func (g *GitHubGateway) doConditional(ctx context.Context, urlStr, revision string, v interface{}) (*github.Response, error) {
	req, err := g.restClient.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	if revision != "" {
		req.Header.Set("If-None-Match", revision)
	}
	resp, err := g.restClient.Do(ctx, req, v)
	if notModified(resp) {
		return resp, nil
	}
	return resp, err
}

func (g *GitHubGateway) FetchRepository(ctx context.Context, owner, name string) (*domain.Repository, error) {
	repo, resp, err := g.restClient.Repositories.Get(ctx, owner, name)
	if notFound(resp) {
		g.logger.Debug("repository not found", zap.String("owner", owner), zap.String("repo", name))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, name, err)
	}
	return &domain.Repository{
		Name:        repo.GetName(),
		Stars:       repo.GetStargazersCount(),
		Subscribers: repo.GetSubscribersCount(),
		License:     repo.GetLicense().GetName(),
	}, nil
}

func (g *GitHubGateway) FetchAllRepositories(ctx context.Context, owner string) ([]domain.RepoSummary, error) {
	variables := map[string]interface{}{
		"login":  githubv4.String(owner),
		"cursor": (*githubv4.String)(nil),
	}
	repos := []domain.RepoSummary{}
	for {
		var q allRepositoriesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s: %w", owner, err)
		}
		for _, node := range q.User.Repositories.Nodes {
			repos = append(repos, domain.RepoSummary{Name: node.Name, Stars: node.StargazerCount})
		}
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Repositories.PageInfo.EndCursor)
		g.logger.Debug("fetching next page of repositories", zap.String("owner", owner))
	}
	return repos, nil
}

func (g *GitHubGateway) FetchTopStarred(ctx context.Context, owner string, limit int, revision string) ([]domain.RepoSummary, string, bool, error) {
	if limit <= 0 {
		return nil, "", false, nil
	}

	params := url.Values{}
	params.Set("q", "user:"+owner)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(limit))

	var result github.RepositoriesSearchResult
	resp, err := g.doConditional(ctx, "search/repositories?"+params.Encode(), revision, &result)
	if notModified(resp) {
		g.logger.Debug("top starred listing unchanged", zap.String("owner", owner))
		return nil, revision, false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to search top starred repositories for %s: %w", owner, err)
	}

	repos := make([]domain.RepoSummary, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, domain.RepoSummary{Name: r.GetName(), Stars: r.GetStargazersCount()})
	}
	if len(repos) > limit {
		repos = repos[:limit]
	}
	return repos, etagOf(resp), true, nil
}

func (g *GitHubGateway) FetchReleaseDownloadTotal(ctx context.Context, owner, name string) (int, error) {
	opts := &github.ListOptions{PerPage: 100}
	total := 0
	for {
		releases, resp, err := g.restClient.Repositories.ListReleases(ctx, owner, name, opts)
		if notFound(resp) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to list releases for %s/%s: %w", owner, name, err)
		}
		for _, release := range releases {
			for _, asset := range release.Assets {
				total += asset.GetDownloadCount()
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of releases", zap.String("owner", owner), zap.String("repo", name))
	}
	return total, nil
}

func (g *GitHubGateway) FetchUserProfile(ctx context.Context, user, revision string) (*domain.UserProfile, string, bool, error) {
	var u github.User
	resp, err := g.doConditional(ctx, "users/"+user, revision, &u)
	if notModified(resp) {
		return nil, revision, false, nil
	}
	if notFound(resp) {
		return nil, "", true, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to fetch user %s: %w", user, err)
	}
	return &domain.UserProfile{Login: u.GetLogin(), Followers: u.GetFollowers()}, etagOf(resp), true, nil
}

func (g *GitHubGateway) FetchLatestWorkflowRun(ctx context.Context, owner, repo, workflowFile, revision string) (*domain.WorkflowRun, string, bool, error) {
	urlStr := fmt.Sprintf("repos/%s/%s/actions/runs?per_page=1", owner, repo)
	if workflowFile != "" {
		urlStr = fmt.Sprintf("repos/%s/%s/actions/workflows/%s/runs?per_page=1", owner, repo, url.PathEscape(workflowFile))
	}

	var runs github.WorkflowRuns
	resp, err := g.doConditional(ctx, urlStr, revision, &runs)
	if notModified(resp) {
		return nil, revision, false, nil
	}
	if notFound(resp) {
		g.logger.Debug("workflow not found", zap.String("repo", owner+"/"+repo), zap.String("workflow", workflowFile))
		return nil, "", true, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to fetch workflow runs for %s/%s: %w", owner, repo, err)
	}
	if len(runs.WorkflowRuns) == 0 {
		return nil, etagOf(resp), true, nil
	}

	run := runs.WorkflowRuns[0]
	return &domain.WorkflowRun{
		Name:       run.GetName(),
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
	}, etagOf(resp), true, nil
}
