package glyphwave

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// State is the execution strategy selector's state.
type State int

const (
	StateUninitialized State = iota
	StateAttemptingWorker
	StateWorkerActive
	StateMainThreadActive
	// StateUnavailable means no path could build a surface. The hero shows
	// nothing and reports the error once.
	StateUnavailable
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAttemptingWorker:
		return "attempting-worker"
	case StateWorkerActive:
		return "worker-active"
	case StateMainThreadActive:
		return "main-thread-active"
	case StateUnavailable:
		return "unavailable"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures a hero mount. Zero values take the package defaults.
type Options struct {
	PixelSize   float64
	Speed       float64 // zero means DefaultSpeed; SetSpeed(0) freezes a running hero
	Width       int     // canvas width in device pixels
	Height      int     // canvas height in device pixels
	Worker      WorkerMode
	FrameRate   int
	IdleTimeout time.Duration
	Debug       bool

	Platform Platform
	Metrics  *Metrics
	// Now is the clock for render time and the idle deadline.
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.PixelSize <= 0 {
		o.PixelSize = DefaultPixelSize
	}
	if o.Speed == 0 {
		o.Speed = DefaultSpeed
	}
	o.Width = min(max(o.Width, 1), MaxCanvasEdge)
	o.Height = min(max(o.Height, 1), MaxCanvasEdge)
	if o.Worker == "" {
		o.Worker = WorkerAuto
	}
	if o.FrameRate <= 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Platform == nil {
		o.Platform = EbitenPlatform{Offscreen: o.Worker == WorkerOn}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Hero is one mounted background. Mount, Update, Draw and Unmount belong to
// the UI goroutine; Apply and the setters may be called from anywhere.
type Hero struct {
	id     string
	opts   Options
	log    *zap.Logger
	canvas *Canvas
	sched  frameScheduler
	idle   *idleTask

	state      State
	mode       Mode
	thread     renderThread
	worker     *workerThread
	main       *mainThread
	reclaiming bool
	mainUp     frontUploader

	mu     sync.Mutex
	posted []Message

	last       SceneEvent
	reported   bool
	events     chan SceneEvent
	sceneFns   []func(SceneEvent)
	errorFns   []func(error)
	stateFns   []func(from, to State)
	errorShown bool
}

// NewHero creates an unmounted hero.
func NewHero(opts Options) *Hero {
	opts.applyDefaults()
	id := uuid.NewString()
	return &Hero{
		id:     id,
		opts:   opts,
		log:    Logger().With(zap.String("hero", id)),
		canvas: NewCanvas(opts.Width, opts.Height),
		events: make(chan SceneEvent, eventBuffer),
	}
}

// ID returns the hero's instance id.
func (h *Hero) ID() string { return h.id }

// State returns the selector state.
func (h *Hero) State() State { return h.state }

// Mode returns the execution mode once one is active.
func (h *Hero) Mode() Mode { return h.mode }

// Canvas returns the hero's canvas.
func (h *Hero) Canvas() *Canvas { return h.canvas }

// Scene returns the last reported scene event and whether one exists.
func (h *Hero) Scene() (SceneEvent, bool) { return h.last, h.reported }

// Events delivers scene events. Events are dropped when the channel is
// full. The channel is closed by Unmount.
func (h *Hero) Events() <-chan SceneEvent { return h.events }

// OnScene registers fn for every scene event.
func (h *Hero) OnScene(fn func(SceneEvent)) { h.sceneFns = append(h.sceneFns, fn) }

// OnError registers fn for the unavailable error.
func (h *Hero) OnError(fn func(error)) { h.errorFns = append(h.errorFns, fn) }

// OnStateChange registers fn for every selector transition.
func (h *Hero) OnStateChange(fn func(from, to State)) { h.stateFns = append(h.stateFns, fn) }

// Mount schedules initialisation for the first idle tick after the first
// Draw, or IdleTimeout from now.
func (h *Hero) Mount() {
	if h.state != StateUninitialized || h.idle != nil {
		return
	}
	h.idle = newIdleTask(h.opts.Now(), h.opts.IdleTimeout, h.initialize)
	h.log.Info("hero mounted",
		zap.Int("width", h.opts.Width), zap.Int("height", h.opts.Height),
		zap.Float64("pixel_size", h.opts.PixelSize), zap.Float64("speed", h.opts.Speed))
}

// Update runs the UI-side bookkeeping for one tick: queued updates, deferred
// init, render thread events and a pending canvas reclaim.
func (h *Hero) Update() error {
	if h.state == StateTerminated {
		return nil
	}
	h.flushPosted()
	h.idle.poll(h.opts.Now())
	h.pumpEvents()
	if h.reclaiming {
		h.tryReclaim()
	}
	return nil
}

// Draw runs due main-thread frames and presents the current image on
// screen. A nil screen renders without presenting.
func (h *Hero) Draw(screen *ebiten.Image) {
	if h.idle != nil {
		h.idle.markPainted()
	}
	h.sched.RunFrame(h.opts.Now())
	if screen == nil {
		return
	}
	switch {
	case h.canvas.Transferred():
		h.canvas.Present(screen)
	case h.main != nil && !h.main.stopped:
		switch s := h.main.ec.Surface.(type) {
		case *ShaderSurface:
			if img := s.Image(); img != nil {
				drawStretched(screen, img)
			}
		case *SoftwareSurface:
			h.mainUp.present(screen, s.Target())
		}
	}
}

// Frame returns a copy of the last frame rendered on the CPU, or nil when
// nothing was rendered or the GPU surface is active.
func (h *Hero) Frame() *image.RGBA {
	if h.canvas.Transferred() {
		return h.canvas.Frame()
	}
	if h.main != nil {
		if s, ok := h.main.ec.Surface.(*SoftwareSurface); ok {
			return s.Target().Snapshot()
		}
	}
	return nil
}

// Apply queues a UI message for the render thread. Only update is accepted.
func (h *Hero) Apply(m Message) {
	if m.Type != MsgUpdate || m.IsEmptyUpdate() {
		return
	}
	h.mu.Lock()
	h.posted = append(h.posted, m)
	h.mu.Unlock()
}

// SetSpeed changes the time multiplier without rebuilding the program.
func (h *Hero) SetSpeed(v float64) { h.Apply(UpdateMessage(WithSpeed(v))) }

// SetPixelSize changes the glyph cell size without rebuilding the program.
func (h *Hero) SetPixelSize(v float64) { h.Apply(UpdateMessage(WithPixelSize(v))) }

// Resize changes the canvas size in device pixels. Each side is capped at
// MaxCanvasEdge.
func (h *Hero) Resize(w, hh int) {
	w, hh = min(max(w, 1), MaxCanvasEdge), min(max(hh, 1), MaxCanvasEdge)
	h.canvas.Resize(w, hh)
	h.Apply(UpdateMessage(WithSize(w, hh)))
}

// Unmount tears the hero down without waiting: the idle task and the frame
// callback are cancelled, a worker is told to stop and terminated, and a
// main-thread surface is released.
func (h *Hero) Unmount() {
	if h.state == StateTerminated {
		return
	}
	h.idle.cancel()
	if h.main != nil {
		h.main.Terminate()
	}
	if h.worker != nil {
		h.worker.Post(StopMessage())
		h.worker.Terminate()
	}
	h.canvas.Dispose()
	h.mainUp.dispose()
	h.transition(StateTerminated)
	h.opts.Metrics.observeMode(h.id, ModeNone)
	close(h.events)
	h.log.Info("hero unmounted")
}

// flushPosted folds queued updates into the mount options, so a later
// fallback starts from current values, and forwards them.
func (h *Hero) flushPosted() {
	h.mu.Lock()
	posted := h.posted
	h.posted = nil
	h.mu.Unlock()
	for _, m := range posted {
		if m.PixelSize != nil && *m.PixelSize > 0 {
			h.opts.PixelSize = *m.PixelSize
		}
		if m.Speed != nil {
			h.opts.Speed = *m.Speed
		}
		if m.Width != nil && *m.Width > 0 {
			h.opts.Width = *m.Width
		}
		if m.Height != nil && *m.Height > 0 {
			h.opts.Height = *m.Height
		}
		if h.thread != nil {
			h.thread.Post(m)
		}
	}
}

func (h *Hero) initialize() {
	if h.opts.Worker != WorkerOff && probeOffscreen(h.opts.Platform) {
		h.startWorker()
		return
	}
	h.startMain()
}

func (h *Hero) startWorker() {
	h.transition(StateAttemptingWorker)
	w := newWorkerThread(h)
	if err := safely(func() error { return h.opts.Platform.SpawnWorker(w.run) }); err != nil {
		w.Terminate()
		h.fallback("spawn", err)
		return
	}
	h.worker, h.thread = w, w
	off, err := h.canvas.TransferToOffscreen()
	if err != nil {
		h.fallback("transfer", err)
		return
	}
	w.Post(InitMessage(off, h.opts.PixelSize, h.opts.Speed))
}

func (h *Hero) startMain() {
	var ec *ExecutionContext
	err := safely(func() error {
		s, err := h.opts.Platform.NewMainSurface(h.opts.Width, h.opts.Height)
		if err != nil {
			return err
		}
		ec, err = newExecutionContext(ModeMainThread, s, h.opts.Width, h.opts.Height)
		return err
	})
	if err != nil {
		h.unavailable(err)
		return
	}
	state := NewRenderState(h.opts.PixelSize, h.opts.Speed, h.opts.Width, h.opts.Height)
	h.main = startMainThread(ec, state, &h.sched, h)
	h.thread = h.main
	h.mode = ModeMainThread
	h.opts.Metrics.observeMode(h.id, h.mode)
	h.transition(StateMainThreadActive)
}

// fallback abandons the worker. The canvas, if it was transferred, comes
// back once the worker goroutine has closed it; until then the hero keeps
// its current state and retries on each Update.
func (h *Hero) fallback(reason string, err error) {
	h.log.Warn("worker unavailable, rendering on main thread",
		zap.String("reason", reason), zap.Error(err))
	h.opts.Metrics.observeFallback(reason)
	if h.worker != nil {
		h.worker.Post(StopMessage())
		h.worker.Terminate()
	}
	h.thread = nil
	h.mode = ModeNone
	if h.canvas.Transferred() {
		h.reclaiming = true
		h.tryReclaim()
		return
	}
	h.worker = nil
	h.startMain()
}

func (h *Hero) tryReclaim() {
	if err := h.canvas.Reclaim(); errors.Is(err, ErrCanvasBusy) {
		return
	}
	h.reclaiming = false
	h.worker = nil
	h.startMain()
}

func (h *Hero) unavailable(err error) {
	h.transition(StateUnavailable)
	err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	h.log.Error("hero unavailable", zap.Error(err))
	if h.errorShown {
		return
	}
	h.errorShown = true
	for _, fn := range h.errorFns {
		fn(err)
	}
}

func (h *Hero) pumpEvents() {
	for h.thread != nil {
		var m Message
		select {
		case m = <-h.thread.Events():
		default:
			return
		}
		switch m.Type {
		case MsgReady:
			if h.state == StateAttemptingWorker {
				h.mode = ModeWorker
				h.opts.Metrics.observeMode(h.id, h.mode)
				h.transition(StateWorkerActive)
			}
		case MsgError:
			if h.mode != ModeMainThread {
				h.fallback("worker error", errors.New(m.Error))
			}
		case MsgSceneUpdate:
			h.dispatchScene(m.Event())
		}
	}
}

func (h *Hero) dispatchScene(ev SceneEvent) {
	h.last, h.reported = ev, true
	h.opts.Metrics.observeScene(h.id, ev)
	h.log.Debug("scene", zap.String("scene", string(ev.Scene)),
		zap.Float64("progress", ev.Progress), zap.Int("fps", ev.FPS))
	for _, fn := range h.sceneFns {
		fn(ev)
	}
	select {
	case h.events <- ev:
	default:
	}
}

func (h *Hero) transition(to State) {
	from := h.state
	if from == to {
		return
	}
	h.state = to
	h.log.Info("state", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, fn := range h.stateFns {
		fn(from, to)
	}
}
