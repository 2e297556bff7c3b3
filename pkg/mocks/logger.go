package mocks

import (
	"fmt"
	"sync"

	"github.com/user/layerpaint/pkg/ports"
)

// LogEntry is a recorded log line.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger records formatted log lines from itself and its component loggers.
type Logger struct {
	component string
	shared    *logStore
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a recording logger.
func NewLogger() *Logger {
	return &Logger{shared: &logStore{}}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.add(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.add(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.add(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.add(ports.LevelError, msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, shared: m.shared}
}

func (m *Logger) add(level ports.LogLevel, msg string, args []interface{}) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	m.shared.entries = append(m.shared.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

// Entries returns all recorded lines.
func (m *Logger) Entries() []LogEntry {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	out := make([]LogEntry, len(m.shared.entries))
	copy(out, m.shared.entries)
	return out
}

// Count returns the number of lines at the given level.
func (m *Logger) Count(level ports.LogLevel) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)
