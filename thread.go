package glyphwave

import (
	"sync"
	"time"
)

// Mode is the execution mode a hero settled on.
type Mode int

const (
	ModeNone Mode = iota
	ModeWorker
	ModeMainThread
)

func (m Mode) String() string {
	switch m {
	case ModeWorker:
		return "worker"
	case ModeMainThread:
		return "main"
	}
	return "none"
}

// renderThread is one running render loop. The hero picks an implementation
// once per mount and talks to it only through messages.
type renderThread interface {
	// Post delivers a UI message. It never blocks.
	Post(m Message)
	// Events carries ready, error and sceneUpdate messages.
	Events() <-chan Message
	// Terminate stops the loop without waiting for it.
	Terminate()
}

// eventBuffer sizes the render-to-UI channel. Scene updates beyond it are
// dropped; ready and error wait for room.
const eventBuffer = 16

// mailbox is an unbounded, non-blocking inbox with a wake-up signal.
type mailbox struct {
	mu     sync.Mutex
	msgs   []Message
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (b *mailbox) put(m Message) {
	b.mu.Lock()
	b.msgs = append(b.msgs, m)
	b.mu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// requeue puts msgs back in front of anything posted since they were drained.
func (b *mailbox) requeue(msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	b.mu.Lock()
	b.msgs = append(append([]Message(nil), msgs...), b.msgs...)
	b.mu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *mailbox) drain() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.msgs
	b.msgs = nil
	return msgs
}

// frameEnv is what renderFrame reports to.
type frameEnv struct {
	emit    func(Message)
	stats   *frameStats
	metrics *Metrics
	mode    Mode
}

// renderFrame applies pending messages, draws one frame at render time t and
// reports the scene when due. It returns false once the state has stopped.
func renderFrame(ec *ExecutionContext, state *RenderState, pending []Message, t float64, env frameEnv) (bool, error) {
	for _, m := range pending {
		if state.Apply(m) {
			ec.Surface.Viewport(state.Width, state.Height)
		}
	}
	if !state.Running {
		return false, nil
	}

	begin := time.Now()
	if err := ec.Draw(state.Uniforms(t)); err != nil {
		return false, err
	}
	cost := time.Since(begin)
	env.metrics.observeFrame(env.mode, cost.Seconds())

	ev, changed := state.observe(t)
	if changed {
		env.emit(SceneUpdateMessage(ev))
	}
	env.stats.record(cost, t, state)
	return true, nil
}
