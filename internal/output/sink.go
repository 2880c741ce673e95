package output

import (
	"fmt"
	"io"
	"strings"

	"repocheck/internal/config"
)

// Sink defines a destination for the serialized report.
type Sink interface {
	Write(payload string) error
	Close() error
}

// NewSink picks the report destination: the configured file when one is set,
// stdout otherwise.
func NewSink(cfg config.Output, stdout io.Writer) (Sink, error) {
	if path := strings.TrimSpace(cfg.File); path != "" {
		s, err := NewFileSink(path)
		if err != nil {
			return nil, fmt.Errorf("open report file: %w", err)
		}
		return s, nil
	}
	return NewConsoleSink(stdout), nil
}

// Emit writes the payload to the sink and closes it.
func Emit(sink Sink, payload []byte) (err error) {
	if sink == nil {
		return fmt.Errorf("sink must not be nil")
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %T: %w", sink, closeErr)
		}
	}()
	if err := sink.Write(string(payload)); err != nil {
		return fmt.Errorf("write %T: %w", sink, err)
	}
	return nil
}
