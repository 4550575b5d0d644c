package glyphwave

import (
	"sync"
	"sync/atomic"
	"time"
)

// FrameToken identifies one requested frame callback. Cancelling it is
// synchronous: a cancelled callback never runs, even if its frame has
// already been collected.
type FrameToken struct {
	id        uint64
	cancelled atomic.Bool
}

// Cancel prevents the callback from running. Safe to call more than once
// and on a nil token.
func (t *FrameToken) Cancel() {
	if t != nil {
		t.cancelled.Store(true)
	}
}

// Cancelled reports whether Cancel was called.
func (t *FrameToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

type frameRequest struct {
	token *FrameToken
	fn    func(now time.Time)
}

// frameScheduler queues callbacks for the next host frame. Callbacks
// requested while a frame runs are deferred to the frame after.
type frameScheduler struct {
	mu      sync.Mutex
	nextID  uint64
	pending []frameRequest
}

// Request schedules fn for the next frame and returns its token.
func (s *frameScheduler) Request(fn func(now time.Time)) *FrameToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tok := &FrameToken{id: s.nextID}
	s.pending = append(s.pending, frameRequest{token: tok, fn: fn})
	return tok
}

// RunFrame runs every pending, uncancelled callback and returns how many ran.
func (s *frameScheduler) RunFrame(now time.Time) int {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	ran := 0
	for _, r := range batch {
		if r.token.Cancelled() {
			continue
		}
		r.fn(now)
		ran++
	}
	return ran
}

// Pending returns the number of queued callbacks, cancelled ones included.
func (s *frameScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// DefaultIdleTimeout bounds how long hero initialisation waits for an idle
// host tick.
const DefaultIdleTimeout = 2 * time.Second

// idleTask defers work until the host is idle: the first tick after the
// first paint, or the deadline, whichever comes first. It runs at most once.
type idleTask struct {
	fn       func()
	deadline time.Time
	painted  bool
	done     bool
}

func newIdleTask(now time.Time, timeout time.Duration, fn func()) *idleTask {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &idleTask{fn: fn, deadline: now.Add(timeout)}
}

// markPainted records that the host has drawn at least one frame.
func (t *idleTask) markPainted() {
	t.painted = true
}

// poll runs the task if it is due and reports whether it ran.
func (t *idleTask) poll(now time.Time) bool {
	if t == nil || t.done {
		return false
	}
	if !t.painted && now.Before(t.deadline) {
		return false
	}
	t.done = true
	t.fn()
	return true
}

// cancel drops the task without running it.
func (t *idleTask) cancel() {
	if t != nil {
		t.done = true
	}
}
