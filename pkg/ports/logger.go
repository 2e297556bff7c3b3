// Package ports defines the interfaces the editing engine uses to reach its
// host: logging, raster surfaces, refresh ticks, notifications and storage.
package ports

import "strings"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-sample and per-render details.
	LevelDebug LogLevel = iota
	// LevelInfo is for session-level progress (documents, replays, exports).
	LevelInfo
	// LevelWarn is for recoverable problems such as skipped layers.
	LevelWarn
	// LevelError is for failures that abort a command.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// LookupLogLevel resolves a level name, ignoring case and surrounding space.
func LookupLogLevel(s string) (LogLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i), true
		}
	}
	return LevelInfo, false
}

// ParseLogLevel is LookupLogLevel with unknown names mapped to info.
func ParseLogLevel(s string) LogLevel {
	l, _ := LookupLogLevel(s)
	return l
}

// Logger abstracts logging with translatable message keys.
type Logger interface {
	// Debug logs per-sample and per-render detail. msg is a lexicon key.
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger tagged with a component such as
	// "layers" or "compositor".
	WithComponent(component string) Logger
}
