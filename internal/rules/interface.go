package rules

import "github.com/google/go-github/v81/github"

// Rule checks one compliance property of a repository.
//
// Evaluate must be pure: it sees only the repository descriptor from the
// organization listing and the names present at the repository root, and it
// never calls GitHub. A rule holds no per-repository state, so one instance is
// reused for every repository in a run.
type Rule interface {
	ID() string
	Title() string
	Description() string

	// Evaluate reports a violation message and true when the repository fails the rule.
	Evaluate(repo *github.Repository, files FileSet) (string, bool)
}

// FileSet holds the entry names found at a repository root.
// Lookups are exact and case-sensitive.
type FileSet map[string]struct{}

func NewFileSet(names ...string) FileSet {
	fs := make(FileSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

func (fs FileSet) Has(name string) bool {
	_, ok := fs[name]
	return ok
}
