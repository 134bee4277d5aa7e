package display

import (
	"context"
	"sync"

	"github.com/sweeney/chronodesk/internal/logger"
)

// Mirror keeps a copy of the last frame for readers on other goroutines,
// such as the status server, and forwards frames to an optional inner
// display.
type Mirror struct {
	inner Display

	mu    sync.RWMutex
	frame Frame
	count int64
}

// NewMirror wraps inner, which may be nil.
func NewMirror(inner Display) *Mirror {
	return &Mirror{inner: inner}
}

// Show implements Display.
func (m *Mirror) Show(f Frame) error {
	m.mu.Lock()
	m.frame = Frame{Elements: append([]Element(nil), f.Elements...)}
	m.count++
	m.mu.Unlock()

	if m.inner == nil {
		return nil
	}
	return m.inner.Show(f)
}

// Close implements Display.
func (m *Mirror) Close() error {
	if m.inner == nil {
		return nil
	}
	return m.inner.Close()
}

// Frame returns the last frame shown.
func (m *Mirror) Frame() Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame
}

// Lines returns the text of the last frame.
func (m *Mirror) Lines() []string {
	return m.Frame().Lines()
}

// Redraws returns how many frames have been shown.
func (m *Mirror) Redraws() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Log writes the text of each frame at debug level. It stands in for a
// panel on hosts without one.
type Log struct {
	ctx  context.Context
	last string
}

// NewLog creates a Log display.
func NewLog(ctx context.Context) *Log {
	return &Log{ctx: logger.WithName(ctx, "display")}
}

// Show implements Display. Frames with unchanged text are not logged.
func (l *Log) Show(f Frame) error {
	s := f.String()
	if s == l.last {
		return nil
	}
	l.last = s
	logger.DebugKV(l.ctx, "frame", "lines", f.Lines())
	return nil
}

// Close implements Display.
func (l *Log) Close() error {
	return nil
}
