package cmd

import (
	"io"
	"sync"
)

// lockedWriter serializes writes to w. The default slog handler and the
// progress display both write to stderr, and the former is also called from
// the worker goroutine of an async operation.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newLockedWriter(w io.Writer) *lockedWriter {
	if lw, ok := w.(*lockedWriter); ok {
		return lw
	}
	return &lockedWriter{w: w}
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
