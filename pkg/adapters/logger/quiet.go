package logger

import (
	"sync/atomic"

	"github.com/user/layerpaint/pkg/ports"
)

// Quiet discards every message but counts warnings and errors across all of
// its component loggers, so a --quiet run can still report that something
// went wrong.
type Quiet struct {
	counts *quietCounts
}

type quietCounts struct {
	warnings atomic.Int64
	errors   atomic.Int64
}

// NewQuiet creates a quiet logger.
func NewQuiet() *Quiet {
	return &Quiet{counts: &quietCounts{}}
}

func (l *Quiet) Debug(msg string, args ...interface{}) {}

func (l *Quiet) Info(msg string, args ...interface{}) {}

func (l *Quiet) Warn(msg string, args ...interface{}) { l.counts.warnings.Add(1) }

func (l *Quiet) Error(msg string, args ...interface{}) { l.counts.errors.Add(1) }

// WithComponent returns a logger sharing the same counters.
func (l *Quiet) WithComponent(component string) ports.Logger {
	return &Quiet{counts: l.counts}
}

// Warnings returns the number of suppressed warnings.
func (l *Quiet) Warnings() int { return int(l.counts.warnings.Load()) }

// Errors returns the number of suppressed errors.
func (l *Quiet) Errors() int { return int(l.counts.errors.Load()) }

var _ ports.Logger = (*Quiet)(nil)
