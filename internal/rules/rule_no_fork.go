package rules

import "github.com/google/go-github/v81/github"

type NoForkRule struct{}

func (r *NoForkRule) ID() string {
	return "not-a-fork"
}

func (r *NoForkRule) Title() string {
	return "Repository Is Not a Fork"
}

func (r *NoForkRule) Description() string {
	return "Flags repositories that GitHub marks as forks of another repository."
}

// Evaluate fires only when the fork flag is present and true.
func (r *NoForkRule) Evaluate(repo *github.Repository, _ FileSet) (string, bool) {
	if repo.GetFork() {
		return "Is a fork", true
	}
	return "", false
}
