package internal

import (
	"sync"
	"time"
)

// DefaultNotificationTimeout is how long a notification stays visible
const DefaultNotificationTimeout = 3500 * time.Millisecond

// Notification is the single active error banner
type Notification struct {
	Generation uint64
	Message    string
	ShownAt    time.Time
}

// Notifier is a single-slot, self-expiring notification. A new Show
// pre-empts the current notification instead of queuing behind it.
type Notifier struct {
	mu       sync.Mutex
	clock    Clock
	timeout  time.Duration
	gen      uint64
	current  *Notification
	timer    Timer
	closed   bool
	onChange func()
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithClock replaces the wall clock
func WithClock(c Clock) NotifierOption {
	return func(n *Notifier) { n.clock = c }
}

// WithTimeout sets the dismissal interval
func WithTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewNotifier creates an empty notifier
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		clock:   SystemClock{},
		timeout: DefaultNotificationTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// OnChange registers a hook invoked after the visible notification changes,
// including on expiry. The hook runs outside the notifier's lock.
func (n *Notifier) OnChange(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Show replaces any current notification and restarts the dismissal timer
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = &Notification{
		Generation: gen,
		Message:    message,
		ShownAt:    n.clock.Now(),
	}
	n.timer = n.clock.AfterFunc(n.timeout, func() { n.expire(gen) })
	hook := n.onChange
	n.mu.Unlock()

	LogDebug("notification %d shown: %s", gen, message)
	if hook != nil {
		hook()
	}
}

// Dismiss clears the current notification early
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.current == nil {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
	hook := n.onChange
	n.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Current returns the visible notification, if any
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Close cancels the pending dismissal. Show is a no-op afterwards.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.closed = true
	n.onChange = nil
}

// expire clears the notification only if it is still the one the timer
// was scheduled for.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if n.closed || n.current == nil || n.current.Generation != gen {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	hook := n.onChange
	n.mu.Unlock()

	LogDebug("notification %d expired", gen)
	if hook != nil {
		hook()
	}
}
