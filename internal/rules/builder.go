package rules

import (
	"repocheck/internal/config"

	"github.com/google/go-github/v81/github"
)

// Build returns the ordered rule set for a run: one RequiredFileRule per
// configured file name, in configuration order, followed by NoForkRule.
func Build(cfg config.Rules) []Rule {
	names := requiredFileNames(cfg.RequiredFiles)
	set := make([]Rule, 0, len(names)+1)
	for _, name := range names {
		set = append(set, NewRequiredFileRule(name))
	}
	if cfg.CheckForks {
		set = append(set, &NoForkRule{})
	}
	return set
}

// Evaluate applies every rule to the repository and returns the violation
// messages in rule order. A nil result means the repository is compliant.
func Evaluate(set []Rule, repo *github.Repository, files FileSet) []string {
	var reasons []string
	for _, r := range set {
		if msg, violated := r.Evaluate(repo, files); violated {
			reasons = append(reasons, msg)
		}
	}
	return reasons
}
