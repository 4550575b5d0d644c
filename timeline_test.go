package glyphwave

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testTimeline = `{"steps": [
	{"action": "expect", "scene": "water"},
	{"action": "advance", "seconds": 6},
	{"action": "expect", "scene": "hive"},
	{"action": "snapshot", "label": "hive"},
	{"action": "update", "pixelSize": 4, "width": 48, "height": 24},
	{"action": "snapshot", "label": "small cells"}
]}`

func TestTimelineRun(t *testing.T) {
	tl, err := LoadTimeline([]byte(testTimeline))
	if err != nil {
		t.Fatalf("LoadTimeline: %v", err)
	}
	tl.Dir = t.TempDir()
	tl.FrameStep = 50 * time.Millisecond

	h, clock := NewHeadlessHero(Options{Width: 32, Height: 16, PixelSize: 8})
	defer h.Unmount()

	paths, err := tl.Run(h, clock)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2", paths)
	}
	if want := filepath.Join(tl.Dir, "small_cells.png"); paths[1] != want {
		t.Errorf("paths[1] = %q, want %q", paths[1], want)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("snapshot %s: %v", p, err)
		}
	}
	if img := h.Frame(); img == nil || img.Bounds().Dx() != 48 {
		t.Errorf("frame after resize = %v", img)
	}
}

func TestTimelineExpectationFails(t *testing.T) {
	tl, err := LoadTimeline([]byte(`{"steps": [{"action": "expect", "scene": "wood"}]}`))
	if err != nil {
		t.Fatalf("LoadTimeline: %v", err)
	}
	h, clock := NewHeadlessHero(Options{Width: 16, Height: 16})
	defer h.Unmount()

	if _, err := tl.Run(h, clock); !errors.Is(err, ErrExpectation) {
		t.Errorf("Run err = %v, want ErrExpectation", err)
	}
}

func TestLoadTimelineRejects(t *testing.T) {
	for _, src := range []string{
		`not json`,
		`{"steps": []}`,
		`{"steps": [{"action": "jump"}]}`,
	} {
		if _, err := LoadTimeline([]byte(src)); err == nil {
			t.Errorf("LoadTimeline(%s) accepted", src)
		}
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	start := c.Now()
	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("elapsed = %v, want 1.5s", got)
	}
}
