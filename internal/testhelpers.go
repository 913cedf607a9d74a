package internal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// CreateTestSession creates a session snapshot with one full turn
func CreateTestSession(id string) *Session {
	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	score := 0.912
	district := "Colombo"
	return NewSession(id, at, &BuildingContext{District: &district}, []ChatMessage{
		{
			ID:        "msg-user-" + id,
			Role:      RoleUser,
			Content:   "Does the code apply to my office?",
			CreatedAt: at,
		},
		{
			ID:        "msg-assistant-" + id,
			Role:      RoleAssistant,
			Content:   "Yes, offices above the size threshold are covered.",
			CreatedAt: at.Add(2 * time.Second),
			Meta:      &Applicability{Applies: AppliesYes, Reason: "Commercial building over 500 m2"},
			Sources: []SourceCitation{
				{ChunkID: "p12_c3", Page: 12, Score: &score, Excerpt: "This code applies to buildings..."},
			},
		},
	})
}

// CreateTestSessionWithMessages creates a session with custom messages
func CreateTestSessionWithMessages(id string, messages []ChatMessage) *Session {
	return NewSession(id, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), nil, messages)
}

// StubAdvisor is an Advisor driven by a function, recording every request
type StubAdvisor struct {
	mu       sync.Mutex
	Fn       func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Requests []ChatRequest
}

// Ask records req and delegates to Fn
func (s *StubAdvisor) Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	fn := s.Fn
	s.mu.Unlock()
	if fn == nil {
		return &ChatResponse{}, nil
	}
	return fn(ctx, req)
}

// Calls returns how many requests were made
func (s *StubAdvisor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// FakeClock is a manually advanced Clock
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

// NewFakeClock creates a clock frozen at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run when the clock is advanced past d
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of timers that have neither fired nor stopped
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves time forward and runs due timers in deadline order on the
// calling goroutine.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
