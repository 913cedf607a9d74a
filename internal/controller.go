package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// UIState is the transient state the chat surface renders from
type UIState struct {
	Busy         bool
	DrawerOpen   bool
	Draft        string
	Notification *Notification
}

// Controller drives chat turns against an Advisor. It owns the transcript
// and reads the building form; it is the transcript's only writer.
type Controller struct {
	mu         sync.Mutex
	advisor    Advisor
	transcript *Transcript
	form       *BuildingForm
	notifier   *Notifier
	clock      Clock
	sessionID  string
	startedAt  time.Time
	draft      string
	busy       bool
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithControllerClock sets the clock used for message timestamps
func WithControllerClock(c Clock) ControllerOption {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithTranscript injects an existing transcript
func WithTranscript(t *Transcript) ControllerOption {
	return func(ctrl *Controller) { ctrl.transcript = t }
}

// WithForm injects an existing building form
func WithForm(f *BuildingForm) ControllerOption {
	return func(ctrl *Controller) { ctrl.form = f }
}

// WithNotifier injects an existing notifier
func WithNotifier(n *Notifier) ControllerOption {
	return func(ctrl *Controller) { ctrl.notifier = n }
}

// NewController creates a controller with fresh session state
func NewController(advisor Advisor, opts ...ControllerOption) *Controller {
	c := &Controller{
		advisor: advisor,
		clock:   SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transcript == nil {
		c.transcript = NewTranscript()
	}
	if c.form == nil {
		c.form = NewBuildingForm()
	}
	if c.notifier == nil {
		c.notifier = NewNotifier(WithClock(c.clock))
	}
	c.sessionID = NewMessageID()
	c.startedAt = c.clock.Now()
	return c
}

// Transcript returns the session transcript
func (c *Controller) Transcript() *Transcript { return c.transcript }

// Form returns the building details form
func (c *Controller) Form() *BuildingForm { return c.form }

// Notifier returns the error banner
func (c *Controller) Notifier() *Notifier { return c.notifier }

// SetDraft records the composer text
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Busy reports whether a request is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns a snapshot of the transient UI state
func (c *Controller) State() UIState {
	c.mu.Lock()
	st := UIState{Busy: c.busy, Draft: c.draft}
	c.mu.Unlock()

	st.DrawerOpen = c.form.IsOpen()
	if n, ok := c.notifier.Current(); ok {
		st.Notification = &n
	}
	return st
}

// Snapshot returns an exportable view of the session with the context
// the form currently normalizes to.
func (c *Controller) Snapshot() *Session {
	return NewSession(c.sessionID, c.startedAt, Normalize(c.form.Snapshot()), c.transcript.Messages())
}

// Turn is a user message that has been appended and is waiting for its
// reply. Resolve must be called exactly once.
type Turn struct {
	ctrl    *Controller
	Message ChatMessage
	Context *BuildingContext
	once    sync.Once
}

// Begin runs the synchronous half of a send: it appends the user message,
// clears the draft, marks the controller busy and snapshots the building
// context. Blank drafts and calls made while busy change nothing.
func (c *Controller) Begin(draft string) (*Turn, error) {
	text := strings.TrimSpace(draft)
	if text == "" {
		return nil, ErrEmptyDraft
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return nil, ErrBusy
	}

	msg := NewUserMessage(text, c.clock.Now())
	c.transcript.Append(msg)
	c.draft = ""
	c.busy = true

	turn := &Turn{
		ctrl:    c,
		Message: msg,
		Context: Normalize(c.form.Snapshot()),
	}
	LogDebug("turn %s started (context: %t)", msg.ID, turn.Context != nil)
	return turn, nil
}

// Resolve issues the backend request for the turn. On success the reply
// is appended and returned. On failure nothing is appended, the failure is
// shown through the notifier and returned. Busy is cleared either way.
func (t *Turn) Resolve(ctx context.Context) (reply *ChatMessage, err error) {
	ran := false
	t.once.Do(func() {
		ran = true
		reply, err = t.ctrl.resolve(ctx, t)
	})
	if !ran {
		return nil, errors.New("turn already resolved")
	}
	return reply, err
}

func (c *Controller) resolve(ctx context.Context, t *Turn) (reply *ChatMessage, err error) {
	start := c.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			reply = nil
			err = fmt.Errorf("advisor panicked: %v", r)
			LogError("turn %s: %v", t.Message.ID, err)
			c.notifier.Show(NotificationText(err))
		}
		observeTurn(err, c.clock.Now().Sub(start))
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	resp, err := c.advisor.Ask(ctx, ChatRequest{Message: t.Message.Content, Context: t.Context})
	if err != nil {
		LogWarn("turn %s failed (status %d): %v", t.Message.ID, StatusCode(err), err)
		c.notifier.Show(NotificationText(err))
		return nil, err
	}
	if resp == nil {
		resp = &ChatResponse{}
	}

	msg := NewAssistantMessage(resp, c.clock.Now())
	c.transcript.Append(msg)
	LogDebug("turn %s answered: applies=%s sources=%d", t.Message.ID, msg.Meta.Applies, len(msg.Sources))
	return &msg, nil
}

// Send runs a whole turn: Begin followed by Resolve. It returns
// ErrEmptyDraft or ErrBusy without side effects when the send is not
// allowed.
func (c *Controller) Send(ctx context.Context, draft string) (*ChatMessage, error) {
	turn, err := c.Begin(draft)
	if err != nil {
		return nil, err
	}
	return turn.Resolve(ctx)
}

// Close releases the notifier timer
func (c *Controller) Close() {
	c.notifier.Close()
}
