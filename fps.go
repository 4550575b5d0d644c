package glyphwave

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSWindow is the sampling window of the render loop's frame counter.
const FPSWindow = 1000 * time.Millisecond

// fpsMeter counts frames over FPSWindow of render time.
type fpsMeter struct {
	start  float64 // window start, render seconds
	frames int
	fps    int
	begun  bool
}

// tick records a frame at render time t and returns the latest sample.
// The sample is rounded to whole frames and is zero until the first window
// closes.
func (m *fpsMeter) tick(t float64) int {
	if !m.begun {
		m.start, m.begun = t, true
	}
	m.frames++
	if elapsed := t - m.start; elapsed >= FPSWindow.Seconds() {
		m.fps = int(math.Round(float64(m.frames) / elapsed))
		m.frames = 0
		m.start = t
	}
	return m.fps
}

// fpsOverlay draws hero and host frame rates in the corner of a debug build.
// It redraws its text at most every half second.
type fpsOverlay struct {
	img  *ebiten.Image
	last time.Time
}

func (o *fpsOverlay) draw(dst *ebiten.Image, heroFPS int, mode Mode) {
	if o.img == nil {
		// 160x48 holds three lines of debug text.
		o.img = ebiten.NewImage(160, 48)
	}
	if now := time.Now(); now.Sub(o.last) >= 500*time.Millisecond {
		o.last = now
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf("hero: %d (%s)\nFPS: %.1f\nTPS: %.1f",
			heroFPS, mode, ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	dst.DrawImage(o.img, nil)
}
