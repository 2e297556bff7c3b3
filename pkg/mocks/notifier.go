package mocks

import (
	"sync"

	"github.com/user/layerpaint/pkg/ports"
)

// Notification is a recorded Notify call.
type Notification struct {
	Message  string
	Severity ports.Severity
}

// Notifier records notifications.
type Notifier struct {
	mu            sync.Mutex
	Notifications []Notification
}

func (m *Notifier) Notify(message string, severity ports.Severity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, Notification{Message: message, Severity: severity})
}

// Count returns the number of notifications with the given severity.
func (m *Notifier) Count(severity ports.Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, note := range m.Notifications {
		if note.Severity == severity {
			n++
		}
	}
	return n
}

// Last returns the most recent notification.
func (m *Notifier) Last() (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Notifications) == 0 {
		return Notification{}, false
	}
	return m.Notifications[len(m.Notifications)-1], true
}

var _ ports.Notifier = (*Notifier)(nil)
