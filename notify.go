package include

import (
	"context"
	"log/slog"
	"sync"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindError Kind = "error" // one failed inclusion point
	KindWarn  Kind = "warn"  // inclusion points left unresolved at the depth bound
)

// Notifier receives inclusion failures and warnings. It is called from the
// goroutine running the pipeline, once per failed inclusion point.
// Implementations shared between concurrent runs must be safe for concurrent use.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(kind Kind, message string)

// Notify calls f(kind, message).
func (f NotifierFunc) Notify(kind Kind, message string) { f(kind, message) }

// LogNotifier forwards notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs errors at Error level and warnings at Warn level.
func (n LogNotifier) Notify(kind Kind, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelWarn
	if kind == KindError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, message, "kind", string(kind))
}

// Notification is one recorded notification.
type Notification struct {
	Kind    Kind
	Message string
}

// Collector records notifications in memory. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	notes []Notification
}

// Notify records the notification.
func (c *Collector) Notify(kind Kind, message string) {
	c.mu.Lock()
	c.notes = append(c.notes, Notification{Kind: kind, Message: message})
	c.mu.Unlock()
}

// Notifications returns a copy of the recorded notifications in arrival order.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notes))
	copy(out, c.notes)
	return out
}

// Count returns the number of recorded notifications of the given kind.
func (c *Collector) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, note := range c.notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

// multiNotifier fans a notification out to several notifiers.
type multiNotifier []Notifier

func (m multiNotifier) Notify(kind Kind, message string) {
	for _, n := range m {
		n.Notify(kind, message)
	}
}
