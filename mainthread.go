package glyphwave

import (
	"time"

	"go.uber.org/zap"
)

// mainThread renders inside the host's Draw through frame callbacks. Every
// method runs on the UI goroutine.
type mainThread struct {
	ec     *ExecutionContext
	state  *RenderState
	sched  *frameScheduler
	token  *FrameToken
	inbox  []Message
	events chan Message
	env    frameEnv
	log    *zap.Logger

	start   time.Time
	started bool
	stopped bool
}

func startMainThread(ec *ExecutionContext, state *RenderState, sched *frameScheduler, h *Hero) *mainThread {
	t := &mainThread{
		ec:     ec,
		state:  state,
		sched:  sched,
		events: make(chan Message, eventBuffer),
		log:    h.log.With(zap.Stringer("mode", ModeMainThread)),
	}
	t.env = frameEnv{
		emit:    t.emitScene,
		stats:   newFrameStats(h.log, ModeMainThread, h.opts.Debug),
		metrics: h.opts.Metrics,
		mode:    ModeMainThread,
	}
	t.token = sched.Request(t.frame)
	return t
}

// Post queues m for the start of the next frame.
func (t *mainThread) Post(m Message) {
	t.inbox = append(t.inbox, m)
}

func (t *mainThread) Events() <-chan Message { return t.events }

// Terminate cancels the pending frame and releases the surface.
func (t *mainThread) Terminate() {
	t.token.Cancel()
	t.release()
}

func (t *mainThread) frame(now time.Time) {
	if t.stopped {
		return
	}
	if !t.started {
		t.start, t.started = now, true
	}
	pending := t.inbox
	t.inbox = nil
	running, err := renderFrame(t.ec, t.state, pending, now.Sub(t.start).Seconds(), t.env)
	if err != nil {
		t.log.Error("render frame", zap.Error(err))
		t.release()
		return
	}
	if !running {
		t.log.Info("render loop stopped")
		t.release()
		return
	}
	t.token = t.sched.Request(t.frame)
}

func (t *mainThread) release() {
	if t.stopped {
		return
	}
	t.stopped = true
	t.ec.Close()
}

func (t *mainThread) emitScene(m Message) {
	select {
	case t.events <- m:
	default:
		t.log.Debug("scene update dropped", zap.String("scene", string(m.Scene)))
	}
}
