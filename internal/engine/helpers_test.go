package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	gh "repocheck/internal/github"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	name  string
	fork  bool
	files []string
	// contentsStatus overrides the contents endpoint status (0 = 200 with files).
	contentsStatus int
	// contentsBody overrides the contents endpoint body.
	contentsBody string
}

// fakeGitHub serves /orgs/{org}/repos and /repos/{org}/{name}/contents from an
// in-memory list, the way the REST API shapes them.
type fakeGitHub struct {
	t      *testing.T
	org    string
	repos  []fakeRepo
	server *httptest.Server

	mu           sync.Mutex
	contentsHits []string
	listingHits  int

	// listing, when set, replaces the default listing handler.
	listing http.HandlerFunc
}

func newFakeGitHub(t *testing.T, org string, repos ...fakeRepo) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{t: t, org: org, repos: repos}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/{org}/repos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.listingHits++
		f.mu.Unlock()
		if f.listing != nil {
			f.listing(w, r)
			return
		}
		if r.PathValue("org") != f.org {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(t, w, f.listingPayload(f.repos))
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}/contents", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("repo")
		f.mu.Lock()
		f.contentsHits = append(f.contentsHits, name)
		f.mu.Unlock()

		for _, repo := range f.repos {
			if repo.name != name {
				continue
			}
			if repo.contentsStatus != 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(repo.contentsStatus)
				_, _ = w.Write([]byte(repo.contentsBody))
				return
			}
			if repo.contentsBody != "" {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(repo.contentsBody))
				return
			}
			entries := make([]map[string]any, 0, len(repo.files))
			for _, file := range repo.files {
				entries = append(entries, map[string]any{"name": file, "path": file, "type": "file"})
			}
			writeJSON(t, w, entries)
			return
		}
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) listingPayload(repos []fakeRepo) []map[string]any {
	out := make([]map[string]any, 0, len(repos))
	for i, repo := range repos {
		out = append(out, map[string]any{
			"id":           i + 1,
			"name":         repo.name,
			"full_name":    f.org + "/" + repo.name,
			"owner":        map[string]any{"login": f.org},
			"fork":         repo.fork,
			"url":          f.repoAPIURL(repo.name),
			"contents_url": f.repoAPIURL(repo.name) + "/contents/{+path}",
		})
	}
	return out
}

func (f *fakeGitHub) repoAPIURL(name string) string {
	return f.server.URL + "/repos/" + f.org + "/" + name
}

func (f *fakeGitHub) client() *gh.Client {
	f.t.Helper()
	client, err := gh.NewClient(context.Background(), "dummy", gh.WithBaseURL(f.server.URL))
	require.NoError(f.t, err)
	return client
}

func (f *fakeGitHub) contentsRequests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.contentsHits...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
