package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
)

const maxUpstreamBody = 1 << 20

type upstreamBody struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// errorResponse extracts the HTTP response and message carried by go-github's
// error types. Rate-limit errors are distinct types in go-github even though
// GitHub reports them as 403s.
func errorResponse(err error) (resp *http.Response, message, docURL string, ok bool) {
	var er *github.ErrorResponse
	var rle *github.RateLimitError
	var arle *github.AbuseRateLimitError
	switch {
	case errors.As(err, &rle):
		return rle.Response, rle.Message, "", true
	case errors.As(err, &arle):
		return arle.Response, arle.Message, "", true
	case errors.As(err, &er):
		return er.Response, er.Message, er.DocumentationURL, true
	}
	return nil, "", "", false
}

// forbiddenBody returns the raw body of a 403 response carried by err.
// When the body is gone or is not a JSON object (go-github synthesizes a bodyless
// 403 when it already knows the rate limit is exhausted), the message and
// documentation URL from the error value are used instead.
func forbiddenBody(err error) (json.RawMessage, bool) {
	resp, message, docURL, ok := errorResponse(err)
	if !ok || resp == nil || resp.StatusCode != http.StatusForbidden {
		return nil, false
	}

	if resp.Body != nil {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
		raw = bytes.TrimSpace(raw)
		if readErr == nil && len(raw) > 0 && raw[0] == '{' && json.Valid(raw) {
			return json.RawMessage(raw), true
		}
	}

	if strings.TrimSpace(message) == "" {
		message = http.StatusText(http.StatusForbidden)
	}
	body, mErr := json.Marshal(upstreamBody{Message: message, DocumentationURL: docURL})
	if mErr != nil {
		return nil, false
	}
	return body, true
}

// describeError renders err for diagnostics. Unless verbose, request URLs are
// dropped so logs stay readable and do not carry query strings.
func describeError(err error, verbose bool) string {
	if err == nil {
		return "unknown error"
	}

	full := err.Error()
	if verbose {
		return full
	}

	if resp, message, _, ok := errorResponse(err); ok {
		msg := strings.TrimSpace(message)
		if msg == "" {
			msg = "GitHub API request failed"
		}
		if resp != nil {
			return fmt.Sprintf("GitHub API request failed (%d %s): %s", resp.StatusCode, http.StatusText(resp.StatusCode), msg)
		}
		return fmt.Sprintf("GitHub API request failed: %s", msg)
	}

	s := strings.TrimSpace(full)
	if scrubbed := scrubGitHubRequestFromErrorString(s); scrubbed != "" {
		return scrubbed
	}
	return s
}

func scrubGitHubRequestFromErrorString(s string) string {
	// Typical go-github error format, possibly behind a wrap prefix:
	//   list root contents of acme/foo: GET https://api.github.com/...: 404 Not Found []
	// We drop the "GET https://...: " part and keep the prefix.
	methods := []string{"GET ", "POST ", "PUT ", "PATCH ", "DELETE "}
	for _, m := range methods {
		i := strings.Index(s, m)
		if i < 0 {
			continue
		}
		rest := s[i+len(m):]
		j := strings.Index(rest, ": ")
		if j < 0 {
			continue
		}
		return strings.TrimSpace(s[:i] + rest[j+2:])
	}
	return ""
}
