package glyphwave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultFrameRate paces the worker's ticker when none is configured.
const DefaultFrameRate = 60

// workerThread renders on its own goroutine into a transferred canvas.
type workerThread struct {
	platform Platform
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
	metrics  *Metrics
	stats    *frameStats

	inbox  *mailbox
	events chan Message
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newWorkerThread(h *Hero) *workerThread {
	ctx, cancel := context.WithCancel(context.Background())
	rate := h.opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return &workerThread{
		platform: h.opts.Platform,
		interval: time.Second / time.Duration(rate),
		now:      h.opts.Now,
		log:      h.log.With(zap.Stringer("mode", ModeWorker)),
		metrics:  h.opts.Metrics,
		stats:    newFrameStats(h.log, ModeWorker, h.opts.Debug),
		inbox:    newMailbox(),
		events:   make(chan Message, eventBuffer),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (w *workerThread) Post(m Message)         { w.inbox.put(m) }
func (w *workerThread) Events() <-chan Message { return w.events }

// Terminate cancels the goroutine. It does not wait for it to notice.
func (w *workerThread) Terminate() { w.cancel() }

// Done is closed when the goroutine has exited and closed its canvas.
func (w *workerThread) Done() <-chan struct{} { return w.done }

// run is the goroutine body: wait for init, build the surface, report ready,
// then render until stopped or cancelled. A panic before ready becomes an
// error message; after ready it is logged and the loop stays down.
func (w *workerThread) run() {
	defer close(w.done)
	var canvas *OffscreenCanvas
	ready := false
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("glyphwave: render goroutine panic: %v", r)
			if ready {
				w.log.Warn("render goroutine stopped", zap.Error(err))
			} else {
				w.emit(ErrorMessage(err))
			}
		}
		if canvas != nil {
			canvas.Close()
		}
	}()

	msg, ok := w.awaitInit()
	if !ok {
		return
	}
	canvas = msg.Canvas
	if canvas == nil {
		w.emit(ErrorMessage(errors.New("glyphwave: init without canvas")))
		return
	}
	state := NewRenderState(deref(msg.PixelSize, DefaultPixelSize), deref(msg.Speed, 1),
		deref(msg.Width, 1), deref(msg.Height, 1))

	surf, err := w.platform.NewOffscreenSurface(canvas)
	if err != nil {
		w.emit(ErrorMessage(fmt.Errorf("glyphwave: offscreen surface: %w", err)))
		return
	}
	ec, err := newExecutionContext(ModeWorker, surf, state.Width, state.Height)
	if err != nil {
		w.emit(ErrorMessage(err))
		return
	}
	defer ec.Close()

	ready = true
	w.emit(ReadyMessage())
	w.loop(ec, state)
}

// awaitInit blocks until an init message arrives. Messages posted after init
// in the same batch stay queued for the first frame.
func (w *workerThread) awaitInit() (Message, bool) {
	for {
		msgs := w.inbox.drain()
		for i, m := range msgs {
			switch m.Type {
			case MsgInit:
				w.inbox.requeue(msgs[i+1:])
				return m, true
			case MsgStop:
				return Message{}, false
			}
		}
		select {
		case <-w.ctx.Done():
			return Message{}, false
		case <-w.inbox.signal:
		}
	}
}

func (w *workerThread) loop(ec *ExecutionContext, state *RenderState) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	env := frameEnv{emit: w.emitScene, stats: w.stats, metrics: w.metrics, mode: ModeWorker}
	start := w.now()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		}
		t := w.now().Sub(start).Seconds()
		running, err := renderFrame(ec, state, w.inbox.drain(), t, env)
		if err != nil {
			w.log.Error("render frame", zap.Error(err))
			return
		}
		if !running {
			w.log.Info("render loop stopped")
			return
		}
	}
}

// emit delivers ready and error, waiting for room unless cancelled.
func (w *workerThread) emit(m Message) {
	select {
	case w.events <- m:
	case <-w.ctx.Done():
	}
}

// emitScene drops the update when the UI is behind.
func (w *workerThread) emitScene(m Message) {
	select {
	case w.events <- m:
	default:
		w.log.Debug("scene update dropped", zap.String("scene", string(m.Scene)))
	}
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
