package glyphwave

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Theme is the UI colour set for a scene.
type Theme struct {
	Background Color
	Foreground Color // body text
	Accent     Color // links, highlights
}

// ThemeFor returns the theme of a scene, or water's for an unknown name.
func ThemeFor(scene SceneName) Theme {
	d, ok := SceneByName(scene)
	if !ok {
		d = Scenes[0]
	}
	return Theme{Background: d.Palette.Background, Foreground: d.Palette.Foreground, Accent: d.Palette.Accent}
}

// DefaultThemeFade is the duration of a theme change in seconds.
const DefaultThemeFade = 0.6

// ThemeFader re-themes the UI on scene events by tweening every channel of
// the current theme to the new scene's theme. There is no global animation
// manager; the host calls Update each tick.
type ThemeFader struct {
	theme  Theme
	tweens [9]*gween.Tween
	fields [9]*float64
	dur    float32
	fn     ease.TweenFunc

	// Done is true when no fade is running.
	Done bool
}

// NewThemeFader starts at the theme of scene. A nil fn uses ease.InOutQuad.
func NewThemeFader(scene SceneName, duration float32, fn ease.TweenFunc) *ThemeFader {
	if fn == nil {
		fn = ease.InOutQuad
	}
	f := &ThemeFader{theme: ThemeFor(scene), dur: duration, fn: fn, Done: true}
	t := &f.theme
	f.fields = [9]*float64{
		&t.Background.R, &t.Background.G, &t.Background.B,
		&t.Foreground.R, &t.Foreground.G, &t.Foreground.B,
		&t.Accent.R, &t.Accent.G, &t.Accent.B,
	}
	return f
}

// Handle starts a fade to the event's scene from wherever the current fade is.
func (f *ThemeFader) Handle(ev SceneEvent) {
	to := ThemeFor(ev.Scene)
	if f.dur <= 0 {
		f.theme = to
		f.Done = true
		return
	}
	target := [9]float64{
		to.Background.R, to.Background.G, to.Background.B,
		to.Foreground.R, to.Foreground.G, to.Foreground.B,
		to.Accent.R, to.Accent.G, to.Accent.B,
	}
	for i, p := range f.fields {
		f.tweens[i] = gween.New(float32(*p), float32(target[i]), f.dur, f.fn)
	}
	f.Done = false
}

// Update advances the fade by dt seconds.
func (f *ThemeFader) Update(dt float32) {
	if f.Done {
		return
	}
	allDone := true
	for i, tw := range f.tweens {
		val, finished := tw.Update(dt)
		*f.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	f.Done = allDone
}

// Theme returns the current, possibly mid-fade, theme.
func (f *ThemeFader) Theme() Theme {
	return f.theme
}
