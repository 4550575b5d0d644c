package glyphwave

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ManualClock is a clock that only moves when told to. Headless heroes and
// timeline scripts run on it.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts a clock at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the clock's time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NewHeadlessHero mounts a software-rendered, main-thread hero on a manual
// clock and runs it up to its first frame.
func NewHeadlessHero(opts Options) (*Hero, *ManualClock) {
	clock := NewManualClock()
	opts.Platform = HeadlessPlatform{}
	opts.Worker = WorkerOff
	opts.Now = clock.Now
	h := NewHero(opts)
	h.Mount()
	h.Draw(nil)
	_ = h.Update()
	h.Draw(nil)
	_ = h.Update()
	return h, clock
}

// timelineStep is one action of a timeline script.
type timelineStep struct {
	Action    string    `json:"action"`
	Seconds   float64   `json:"seconds,omitempty"`
	Label     string    `json:"label,omitempty"`
	Scene     SceneName `json:"scene,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	PixelSize *float64  `json:"pixelSize,omitempty"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
}

type timelineScript struct {
	Steps []timelineStep `json:"steps"`
}

// Timeline drives a headless hero through a script of advance, update,
// snapshot and expect steps for automated visual checks.
type Timeline struct {
	steps []timelineStep

	// FrameStep is the simulated frame interval. Defaults to 1/60 s.
	FrameStep time.Duration
	// Dir receives snapshot PNGs.
	Dir string
	// ThumbEdge, when positive, also writes thumbnails.
	ThumbEdge int
}

// ErrExpectation is wrapped by Run when an expect step fails.
var ErrExpectation = errors.New("glyphwave: timeline expectation failed")

// LoadTimeline parses a JSON timeline script.
func LoadTimeline(data []byte) (*Timeline, error) {
	var script timelineScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse timeline: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "advance", "update", "snapshot", "expect":
		default:
			return nil, fmt.Errorf("parse timeline: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Timeline{steps: script.Steps, FrameStep: time.Second / 60, Dir: "."}, nil
}

// Run executes every step against h, which must run on clock. It returns the
// paths of written snapshots.
func (tl *Timeline) Run(h *Hero, clock *ManualClock) ([]string, error) {
	var written []string
	for i, st := range tl.steps {
		switch st.Action {
		case "advance":
			tl.advance(h, clock, time.Duration(st.Seconds*float64(time.Second)))
		case "update":
			m := Message{Type: MsgUpdate, PixelSize: st.PixelSize, Speed: st.Speed, Width: st.Width, Height: st.Height}
			if st.Width != nil && st.Height != nil {
				h.canvas.Resize(*st.Width, *st.Height)
			}
			h.Apply(m)
			tl.advance(h, clock, tl.FrameStep)
		case "snapshot":
			img := h.Frame()
			if img == nil {
				return written, fmt.Errorf("timeline step %d: no frame to snapshot", i)
			}
			paths, err := WritePoster(tl.Dir, st.Label, img, tl.ThumbEdge)
			written = append(written, paths...)
			if err != nil {
				return written, fmt.Errorf("timeline step %d: %w", i, err)
			}
		case "expect":
			ev, ok := h.Scene()
			if !ok || ev.Scene != st.Scene {
				return written, fmt.Errorf("%w: step %d: scene %q, want %q", ErrExpectation, i, ev.Scene, st.Scene)
			}
		}
	}
	return written, nil
}

// advance runs simulated frames until d has elapsed.
func (tl *Timeline) advance(h *Hero, clock *ManualClock, d time.Duration) {
	step := tl.FrameStep
	if step <= 0 {
		step = time.Second / 60
	}
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		clock.Advance(step)
		_ = h.Update()
		h.Draw(nil)
	}
}
