package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"
)

type AuthTokenSource string

const (
	AuthTokenSourceExplicit AuthTokenSource = "explicit"
	AuthTokenSourceEnv      AuthTokenSource = "env:GITHUB_TOKEN"
	AuthTokenSourceGHEnv    AuthTokenSource = "env:GH_TOKEN"
	AuthTokenSourceGitHubCL AuthTokenSource = "gh"
)

const defaultHost = "github.com"

// ghAuthTokenTimeout bounds `gh auth token` regardless of the caller's deadline.
var ghAuthTokenTimeout = 5 * time.Second

var tokenEnvVars = []struct {
	name   string
	source AuthTokenSource
}{
	{name: "GITHUB_TOKEN", source: AuthTokenSourceEnv},
	{name: "GH_TOKEN", source: AuthTokenSourceGHEnv},
}

// ResolveAuthTokenForHost resolves a GitHub access token for host (github.com
// when empty, or a GitHub Enterprise Server host).
//
// Precedence:
//  1. provided (if non-empty)
//  2. GITHUB_TOKEN, then GH_TOKEN env vars
//  3. GitHub CLI: `gh auth token -h <host>`
//
// An empty token with a nil error means the scan runs unauthenticated.
// It never prints the token.
func ResolveAuthTokenForHost(ctx context.Context, provided, host string) (token string, source AuthTokenSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, AuthTokenSourceExplicit, nil
	}

	for _, ev := range tokenEnvVars {
		if env := strings.TrimSpace(os.Getenv(ev.name)); env != "" {
			return env, ev.source, nil
		}
	}

	if strings.TrimSpace(host) == "" {
		host = defaultHost
	}
	tok, ok, err := tokenFromGitHubCLI(ctx, host)
	if err != nil {
		return "", "", err
	}
	if ok {
		return tok, AuthTokenSourceGitHubCL, nil
	}
	return "", "", nil
}

// HostForAPIURL maps a REST API base URL to the host gh stores credentials under.
// api.github.com and an empty URL map to github.com.
func HostForAPIURL(apiURL string) string {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return defaultHost
	}
	u, err := url.Parse(apiURL)
	if err != nil || u.Hostname() == "" {
		return defaultHost
	}
	host := strings.ToLower(u.Hostname())
	if host == "api.github.com" {
		return defaultHost
	}
	return host
}

func tokenFromGitHubCLI(ctx context.Context, host string) (token string, ok bool, err error) {
	if _, lookErr := exec.LookPath("gh"); lookErr != nil {
		return "", false, nil
	}

	// Bounded so a broken gh config or credential helper cannot hang the scan.
	cmdCtx, cancel := context.WithTimeout(ctx, ghAuthTokenTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "gh", "auth", "token", "-h", host)
	cmd.WaitDelay = time.Second
	env := os.Environ()
	filteredEnv := env[:0]
	for _, entry := range env {
		if strings.HasPrefix(entry, "GH_PAGER=") {
			continue
		}
		filteredEnv = append(filteredEnv, entry)
	}
	cmd.Env = append(filteredEnv, "GH_PAGER=cat")
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if ctxErr := cmdCtx.Err(); ctxErr != nil {
			return "", false, fmt.Errorf("gh auth token: %w", ctxErr)
		}
		// gh present but not logged in: no token. The raw gh output is not surfaced.
		return "", false, nil
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", false, nil
	}
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", false, errors.New("invalid token returned by gh: contains whitespace")
	}

	return tok, true, nil
}
