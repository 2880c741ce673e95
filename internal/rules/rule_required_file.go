package rules

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v81/github"
)

// RequiredFileRule fails when a named file is missing from the repository root.
type RequiredFileRule struct {
	FileName string
}

func NewRequiredFileRule(name string) *RequiredFileRule {
	return &RequiredFileRule{FileName: name}
}

func (r *RequiredFileRule) ID() string {
	return "required-file:" + r.FileName
}

func (r *RequiredFileRule) Title() string {
	return fmt.Sprintf("%s Exists at Repository Root", r.FileName)
}

func (r *RequiredFileRule) Description() string {
	return fmt.Sprintf("Verifies that a file named exactly %q exists at the repository root. The match is case-sensitive and paths are not normalized.", r.FileName)
}

func (r *RequiredFileRule) Evaluate(_ *github.Repository, files FileSet) (string, bool) {
	if files.Has(r.FileName) {
		return "", false
	}
	return fmt.Sprintf("No file named %s found", r.FileName), true
}

// requiredFileNames returns the distinct, non-blank names in first-seen order.
func requiredFileNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
