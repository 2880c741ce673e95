// Package report holds the result of an organization scan and its JSON shape.
//
// A Report is exactly one of:
//   - a list of non-compliant repositories (possibly empty),
//   - the raw error body GitHub returned when it refused the organization listing,
//   - a generic failure message when the scan could not complete.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
)

// FailureMessage is the fixed text reported when a scan fails for any reason other
// than the organization listing being refused.
const FailureMessage = "Something went wrong in the parsing. The most likely reason is that the API call limit was reached, please try again later."

type Kind int

const (
	KindViolations Kind = iota
	KindUpstream
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindViolations:
		return "violations"
	case KindUpstream:
		return "upstream"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Entry describes one non-compliant repository.
type Entry struct {
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Reasons []string `json:"reasons"`
}

type Report struct {
	Kind     Kind
	Entries  []Entry
	Upstream json.RawMessage
}

type failureBody struct {
	Message string `json:"message"`
}

func Violations(entries []Entry) Report {
	if entries == nil {
		entries = []Entry{}
	}
	return Report{Kind: KindViolations, Entries: entries}
}

// Upstream wraps a raw upstream error body. body must be valid JSON.
func Upstream(body json.RawMessage) Report {
	return Report{Kind: KindUpstream, Upstream: body}
}

func Failure() Report {
	return Report{Kind: KindFailure}
}

// Compliant reports whether the scan completed and found nothing.
func (r Report) Compliant() bool {
	return r.Kind == KindViolations && len(r.Entries) == 0
}

func (r Report) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindViolations:
		entries := r.Entries
		if entries == nil {
			entries = []Entry{}
		}
		return marshalNoEscape(entries)
	case KindUpstream:
		if len(r.Upstream) == 0 || !json.Valid(r.Upstream) {
			return nil, errors.New("report: upstream body is not valid JSON")
		}
		return r.Upstream, nil
	case KindFailure:
		return marshalNoEscape(failureBody{Message: FailureMessage})
	default:
		return nil, errors.New("report: unknown kind")
	}
}

// marshalNoEscape leaves <, > and & as-is; callers that want escaping get it
// from their own encoder.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
