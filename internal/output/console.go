package output

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleSink prints the payload as one line on its writer.
type ConsoleSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{writer: w}
}

func (s *ConsoleSink) Write(payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.writer, payload); err != nil {
		return fmt.Errorf("write report to console: %w", err)
	}
	return flushIfPossible(s.writer)
}

// Close is a no-op; the writer belongs to the caller.
func (s *ConsoleSink) Close() error {
	return nil
}
