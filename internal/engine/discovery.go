package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "repocheck/internal/github"
	"repocheck/internal/rules"

	"github.com/google/go-github/v81/github"
)

const listPageSize = 100

// contentsPathTemplate is the URI template suffix GitHub appends to contents_url.
const contentsPathTemplate = "/{+path}"

// ListOrgRepos returns every repository of the organization in the order GitHub
// lists them, following pagination. The error from the failing page is
// returned unwrapped from go-github so callers can inspect its status.
func ListOrgRepos(ctx context.Context, client *gh.Client, org string) ([]*github.Repository, error) {
	var out []*github.Repository

	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	for {
		repos, resp, err := client.Client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list org repos: %w", err)
		}
		out = append(out, repos...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// RootContentsURL derives the repository root listing endpoint from contents_url.
func RootContentsURL(repo *github.Repository) (string, error) {
	raw := strings.TrimSpace(repo.GetContentsURL())
	if raw == "" {
		return "", fmt.Errorf("repository %q has no contents_url", repoFullName(repo))
	}
	return strings.TrimSuffix(raw, contentsPathTemplate), nil
}

// FetchRootFiles lists the entry names at the repository root.
// Anything but a JSON array of content entries is an error.
func FetchRootFiles(ctx context.Context, client *gh.Client, repo *github.Repository) (rules.FileSet, error) {
	u, err := RootContentsURL(repo)
	if err != nil {
		return nil, err
	}

	req, err := client.Client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build contents request for %s: %w", repoFullName(repo), err)
	}

	var entries []*github.RepositoryContent
	if _, err := client.Client.Do(ctx, req, &entries); err != nil {
		return nil, fmt.Errorf("list root contents of %s: %w", repoFullName(repo), err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.GetName())
	}
	return rules.NewFileSet(names...), nil
}

func repoFullName(repo *github.Repository) string {
	if name := repo.GetFullName(); name != "" {
		return name
	}
	return repo.GetName()
}
