package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"repocheck/internal/report"
)

const prettyIndent = "    "

// Encode serializes the report as compact JSON, or indented by four spaces
// when pretty is set. HTML characters are left unescaped and the result has
// no trailing newline.
func Encode(r report.Report, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", prettyIndent)
	}
	if err := encoder.Encode(r); err != nil {
		return nil, fmt.Errorf("encode %s report: %w", r.Kind, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
