// Package notify delivers short user-facing messages ("toasts") from the
// widgets to whatever host is presenting them.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DismissAfter is how long a host keeps a notification visible.
const DismissAfter = 3 * time.Second

// Severity classifies a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

// Notification is a single delivered message.
type Notification struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// Expired reports whether n should no longer be shown at now.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.At) >= DismissAfter
}

// Notifier is fire-and-forget: callers never learn whether anyone saw it.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Func adapts an ordinary function to a Notifier.
type Func func(message string, severity Severity)

func (f Func) Notify(message string, severity Severity) {
	f(message, severity)
}

// Discard drops every notification.
var Discard Notifier = Func(func(string, Severity) {})

type multi []Notifier

func (m multi) Notify(message string, severity Severity) {
	for _, n := range m {
		n.Notify(message, severity)
	}
}

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Queue buffers notifications until a host drains them.
// It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	limit int
	now   func() time.Time
}

// NewQueue returns a queue holding at most limit notifications; older ones
// are dropped first. A limit <= 0 means unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{limit: limit, now: time.Now}
}

func (q *Queue) Notify(message string, severity Severity) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, Notification{
		Message:  message,
		Severity: severity,
		At:       q.now(),
	})
	if q.limit > 0 && len(q.items) > q.limit {
		q.items = q.items[len(q.items)-q.limit:]
	}
}

// Drain returns the buffered notifications and empties the queue.
// The result is never nil.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len reports the number of buffered notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// LogNotifier writes every notification to a zap logger. Error severity is
// logged at warn level since it reports a user mistake, not a fault.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(message string, severity Severity) {
	if l.Logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("message", message),
		zap.String("severity", string(severity)),
	}
	if severity == Error {
		l.Logger.Warn("notification", fields...)
		return
	}
	l.Logger.Info("notification", fields...)
}
