package engine

import (
	"context"

	gh "repocheck/internal/github"
	"repocheck/internal/report"
	"repocheck/internal/rules"

	"go.uber.org/zap"
)

type Engine struct {
	Client *gh.Client
	Logger *zap.Logger

	// Verbose keeps full request URLs in logged error details.
	Verbose bool
}

func NewEngine(client *gh.Client, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Client: client,
		Logger: logger,
	}
}

// VerifyOrganization lists the organization's repositories, reads each root
// listing, and applies the rule set in order.
//
// A 403 on the listing returns GitHub's error body untouched and inspects no
// repository. Any other failure, including one repository's contents, aborts
// the scan and yields report.Failure; results gathered so far are dropped. The
// cause is only logged.
func (e *Engine) VerifyOrganization(ctx context.Context, org string, set []rules.Rule) report.Report {
	logger := e.logger().With(zap.String("org", org))

	logger.Info("discovering repositories")
	repos, err := ListOrgRepos(ctx, e.Client, org)
	if err != nil {
		if body, ok := forbiddenBody(err); ok {
			logger.Warn("organization listing refused", zap.String("error", describeError(err, e.Verbose)))
			return report.Upstream(body)
		}
		logger.Error("scan failed while listing repositories", zap.String("error", describeError(err, e.Verbose)))
		return report.Failure()
	}
	logger.Info("found repositories", zap.Int("repos", len(repos)), zap.Int("rules", len(set)))

	entries := []report.Entry{}
	for i, repo := range repos {
		name := repoFullName(repo)

		files, err := FetchRootFiles(ctx, e.Client, repo)
		if err != nil {
			logger.Error("scan failed while reading repository contents",
				zap.String("repo", name),
				zap.Int("position", i+1),
				zap.Int("repos", len(repos)),
				zap.Int("discarded_entries", len(entries)),
				zap.String("error", describeError(err, e.Verbose)),
			)
			return report.Failure()
		}

		reasons := rules.Evaluate(set, repo, files)
		logger.Debug("repository evaluated", zap.String("repo", name), zap.Strings("reasons", reasons))
		if len(reasons) == 0 {
			continue
		}
		entries = append(entries, report.Entry{
			Name:    name,
			URL:     repo.GetURL(),
			Reasons: reasons,
		})
	}

	logger.Info("scan finished", zap.Int("non_compliant", len(entries)))
	return report.Violations(entries)
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
