package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"repocheck/internal/config"
	"repocheck/internal/report"
	"repocheck/internal/rules"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var allFiles = []string{"README.md", "LICENSE", "Contributing.md"}

func defaultRules() []rules.Rule {
	return rules.Build(config.New().Rules)
}

func TestVerifyOrganization_Scenarios(t *testing.T) {
	testCases := []struct {
		name  string
		repos []fakeRepo
		want  func(f *fakeGitHub) []report.Entry
	}{
		{
			name:  "compliant repository yields empty report",
			repos: []fakeRepo{{name: "a", files: allFiles}},
			want:  func(*fakeGitHub) []report.Entry { return []report.Entry{} },
		},
		{
			name:  "missing files listed in rule order",
			repos: []fakeRepo{{name: "a", files: []string{"LICENSE"}}},
			want: func(f *fakeGitHub) []report.Entry {
				return []report.Entry{{
					Name:    "acme/a",
					URL:     f.repoAPIURL("a"),
					Reasons: []string{"No file named README.md found", "No file named Contributing.md found"},
				}}
			},
		},
		{
			name:  "fork with all files",
			repos: []fakeRepo{{name: "a", fork: true, files: allFiles}},
			want: func(f *fakeGitHub) []report.Entry {
				return []report.Entry{{Name: "acme/a", URL: f.repoAPIURL("a"), Reasons: []string{"Is a fork"}}}
			},
		},
		{
			name:  "empty organization",
			repos: nil,
			want:  func(*fakeGitHub) []report.Entry { return []report.Entry{} },
		},
		{
			name: "only non-compliant repositories appear, in listing order",
			repos: []fakeRepo{
				{name: "c", fork: true, files: nil},
				{name: "ok", files: allFiles},
				{name: "b", files: []string{"README.md", "Contributing.md"}},
			},
			want: func(f *fakeGitHub) []report.Entry {
				return []report.Entry{
					{
						Name: "acme/c",
						URL:  f.repoAPIURL("c"),
						Reasons: []string{
							"No file named README.md found",
							"No file named LICENSE found",
							"No file named Contributing.md found",
							"Is a fork",
						},
					},
					{Name: "acme/b", URL: f.repoAPIURL("b"), Reasons: []string{"No file named LICENSE found"}},
				}
			},
		},
		{
			name:  "file names are case sensitive",
			repos: []fakeRepo{{name: "a", files: []string{"readme.md", "LICENSE", "CONTRIBUTING.md"}}},
			want: func(f *fakeGitHub) []report.Entry {
				return []report.Entry{{
					Name:    "acme/a",
					URL:     f.repoAPIURL("a"),
					Reasons: []string{"No file named README.md found", "No file named Contributing.md found"},
				}}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeGitHub(t, "acme", tc.repos...)
			e := NewEngine(f.client(), zap.NewNop())

			got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

			require.Equal(t, report.KindViolations, got.Kind)
			require.Equal(t, tc.want(f), got.Entries)
			require.Len(t, f.contentsRequests(), len(tc.repos))
		})
	}
}

func TestVerifyOrganization_ReportJSON(t *testing.T) {
	f := newFakeGitHub(t, "acme", fakeRepo{name: "a", files: []string{"LICENSE"}})
	e := NewEngine(f.client(), nil)

	got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	want := fmt.Sprintf(`[{"name":"acme/a","url":%q,"reasons":["No file named README.md found","No file named Contributing.md found"]}]`, f.repoAPIURL("a"))
	require.JSONEq(t, want, string(raw))
}

func TestVerifyOrganization_ForbiddenListingPassesBodyThrough(t *testing.T) {
	const body = `{"message":"API rate limit exceeded for 203.0.113.7.","documentation_url":"https://docs.github.com/rest/overview/resources-in-the-rest-api#rate-limiting","extra":{"n":1}}`

	testCases := []struct {
		name    string
		headers map[string]string
	}{
		{name: "plain forbidden"},
		{
			name: "primary rate limit",
			headers: map[string]string{
				"X-RateLimit-Limit":     "60",
				"X-RateLimit-Remaining": "0",
				"X-RateLimit-Reset":     "1700000000",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeGitHub(t, "acme", fakeRepo{name: "a", files: allFiles})
			f.listing = func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tc.headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(body))
			}
			core, logs := observer.New(zap.DebugLevel)
			e := NewEngine(f.client(), zap.New(core))

			got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

			require.Equal(t, report.KindUpstream, got.Kind)
			raw, err := json.Marshal(got)
			require.NoError(t, err)
			require.JSONEq(t, body, string(raw))
			require.Empty(t, f.contentsRequests())
			require.Equal(t, 1, logs.FilterMessage("organization listing refused").Len())
		})
	}
}

func TestVerifyOrganization_ListingFailuresDegrade(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`},
		{name: "unknown organization", status: http.StatusNotFound, body: `{"message":"Not Found"}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`},
		{name: "listing is not an array", status: http.StatusOK, body: `{"message":"surprise"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeGitHub(t, "acme", fakeRepo{name: "a", files: allFiles})
			f.listing = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}
			core, logs := observer.New(zap.DebugLevel)
			e := NewEngine(f.client(), zap.New(core))

			got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

			require.Equal(t, report.KindFailure, got.Kind)
			require.Empty(t, f.contentsRequests())
			require.Equal(t, 1, logs.FilterMessage("scan failed while listing repositories").Len())
		})
	}
}

func TestVerifyOrganization_ContentsFailureDiscardsPartialResults(t *testing.T) {
	f := newFakeGitHub(t, "acme",
		fakeRepo{name: "first", files: []string{"LICENSE"}},
		fakeRepo{name: "second", contentsStatus: http.StatusInternalServerError, contentsBody: `{"message":"boom"}`},
		fakeRepo{name: "third", files: nil},
	)
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(f.client(), zap.New(core))

	got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

	require.Equal(t, report.KindFailure, got.Kind)
	require.Nil(t, got.Entries)
	require.Equal(t, []string{"first", "second"}, f.contentsRequests())

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"`+report.FailureMessage+`"}`, string(raw))

	failures := logs.FilterMessage("scan failed while reading repository contents").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	require.Equal(t, "acme/second", fields["repo"])
	require.EqualValues(t, 2, fields["position"])
	require.EqualValues(t, 1, fields["discarded_entries"])
}

func TestVerifyOrganization_ContentsForbiddenStillDegrades(t *testing.T) {
	f := newFakeGitHub(t, "acme",
		fakeRepo{name: "a", contentsStatus: http.StatusForbidden, contentsBody: `{"message":"Resource not accessible"}`},
	)
	e := NewEngine(f.client(), nil)

	got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

	require.Equal(t, report.KindFailure, got.Kind)
}

func TestVerifyOrganization_ContentsNotAnArrayDegrades(t *testing.T) {
	// An empty repository answers its root listing with a 404 object.
	f := newFakeGitHub(t, "acme",
		fakeRepo{name: "empty", contentsStatus: http.StatusNotFound, contentsBody: `{"message":"This repository is empty."}`},
	)
	e := NewEngine(f.client(), nil)

	got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

	require.Equal(t, report.KindFailure, got.Kind)
}

func TestVerifyOrganization_CanceledContextDegrades(t *testing.T) {
	f := newFakeGitHub(t, "acme", fakeRepo{name: "a", files: allFiles})
	e := NewEngine(f.client(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := e.VerifyOrganization(ctx, "acme", defaultRules())

	require.Equal(t, report.KindFailure, got.Kind)
}

func TestVerifyOrganization_Idempotent(t *testing.T) {
	f := newFakeGitHub(t, "acme",
		fakeRepo{name: "a", files: []string{"LICENSE"}},
		fakeRepo{name: "b", fork: true, files: allFiles},
	)
	e := NewEngine(f.client(), nil)

	first, err := json.Marshal(e.VerifyOrganization(context.Background(), "acme", defaultRules()))
	require.NoError(t, err)
	second, err := json.Marshal(e.VerifyOrganization(context.Background(), "acme", defaultRules()))
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestVerifyOrganization_ConfiguredRules(t *testing.T) {
	f := newFakeGitHub(t, "acme",
		fakeRepo{name: "a", fork: true, files: []string{"README.md"}},
	)
	e := NewEngine(f.client(), nil)
	set := rules.Build(config.Rules{RequiredFiles: []string{"SECURITY.md"}, CheckForks: false})

	got := e.VerifyOrganization(context.Background(), "acme", set)

	require.Equal(t, []report.Entry{{
		Name:    "acme/a",
		URL:     f.repoAPIURL("a"),
		Reasons: []string{"No file named SECURITY.md found"},
	}}, got.Entries)
}

func TestVerifyOrganization_ForbiddenOnLaterPage(t *testing.T) {
	const body = `{"message":"API rate limit exceeded"}`
	f := newFakeGitHub(t, "acme")
	f.listing = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/orgs/acme/repos?page=2&per_page=100>; rel="next"`, f.server.URL))
			writeJSON(t, w, f.listingPayload([]fakeRepo{{name: "a"}}))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(body))
	}
	e := NewEngine(f.client(), nil)

	got := e.VerifyOrganization(context.Background(), "acme", defaultRules())

	require.Equal(t, report.KindUpstream, got.Kind)
	require.JSONEq(t, body, string(got.Upstream))
	require.Empty(t, f.contentsRequests())
}
