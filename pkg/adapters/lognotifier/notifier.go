// Package lognotifier reports user-facing notifications through a Logger.
package lognotifier

import "github.com/user/layerpaint/pkg/ports"

// Notifier maps severities onto log levels.
type Notifier struct {
	logger ports.Logger
}

// New creates a Notifier logging under the "notice" component.
func New(logger ports.Logger) *Notifier {
	return &Notifier{logger: logger.WithComponent("notice")}
}

func (n *Notifier) Notify(message string, severity ports.Severity) {
	switch severity {
	case ports.SeverityWarning:
		n.logger.Warn(message)
	case ports.SeverityError:
		n.logger.Error(message)
	default:
		n.logger.Info(message)
	}
}

var _ ports.Notifier = (*Notifier)(nil)
