package glyphwave

import (
	"image/color"
	"math"
)

// Color represents an RGB color with components in [0, 1]. The hero is always
// opaque, so there is no alpha channel.
type Color struct {
	R, G, B float64
}

// Hex parses a "#rrggbb" or "rrggbb" string. Malformed input yields black.
func Hex(s string) Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}
	}
	var v [3]float64
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return Color{}
		}
		v[i] = float64(hi<<4|lo) / 255
	}
	return Color{v[0], v[1], v[2]}
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Mix linearly interpolates between c and other by t, like GLSL mix.
func (c Color) Mix(other Color, t float64) Color {
	return Color{
		R: mix(c.R, other.R, t),
		G: mix(c.G, other.G, t),
		B: mix(c.B, other.B, t),
	}
}

// Add returns the component-wise sum of c and other.
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Scale multiplies every component by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Clamp limits every component to [0, 1].
func (c Color) Clamp() Color {
	return Color{clamp(c.R, 0, 1), clamp(c.G, 0, 1), clamp(c.B, 0, 1)}
}

// RGBA converts to an opaque 8-bit color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp(c.R, 0, 1)*255 + 0.5),
		G: uint8(clamp(c.G, 0, 1)*255 + 0.5),
		B: uint8(clamp(c.B, 0, 1)*255 + 0.5),
		A: 255,
	}
}

// Vec2 is a 2D vector used for pattern-space points and pixel coordinates.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// SceneName identifies one of the five hero scenes.
type SceneName string

const (
	SceneWater SceneName = "water" // interference ripples
	SceneHive  SceneName = "hive"  // honeycomb tessellation
	SceneCell  SceneName = "cell"  // voronoi cells
	SceneShell SceneName = "shell" // logarithmic spiral, with nebula overlay
	SceneWood  SceneName = "wood"  // concentric rings
)

// Palette is the color triple of one scene.
type Palette struct {
	Background Color
	Foreground Color
	Accent     Color
}

// SceneDescriptor describes one scene in the fixed cycle.
type SceneDescriptor struct {
	Index   int
	Name    SceneName
	Palette Palette
}

// SceneCount is the number of scenes in the cycle.
const SceneCount = 5

// Scenes is the fixed, cyclic scene order. Index i is followed by (i+1)%5.
var Scenes = [SceneCount]SceneDescriptor{
	{0, SceneWater, Palette{Hex("#0b1d2e"), Hex("#4fc3f7"), Hex("#81d4fa")}},
	{1, SceneHive, Palette{Hex("#2b1d0e"), Hex("#ffb300"), Hex("#ffd54f")}},
	{2, SceneCell, Palette{Hex("#0f2417"), Hex("#66bb6a"), Hex("#a5d6a7")}},
	{3, SceneShell, Palette{Hex("#1a1030"), Hex("#ce93d8"), Hex("#f48fb1")}},
	{4, SceneWood, Palette{Hex("#24170f"), Hex("#a1887f"), Hex("#d7ccc8")}},
}

// SceneByIndex returns the descriptor for i, wrapping modulo SceneCount.
func SceneByIndex(i int) SceneDescriptor {
	i %= SceneCount
	if i < 0 {
		i += SceneCount
	}
	return Scenes[i]
}

// SceneByName looks up a descriptor by name.
func SceneByName(name SceneName) (SceneDescriptor, bool) {
	for _, s := range Scenes {
		if s.Name == name {
			return s, true
		}
	}
	return SceneDescriptor{}, false
}

// --- GLSL-style scalar helpers ---
// These mirror the shader built-ins exactly so the Go kernel and the Kage
// program agree on every intermediate value.

func mix(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func smoothstep(e0, e1, x float64) float64 {
	t := clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

func fract(x float64) float64 { return x - math.Floor(x) }

// glslMod is GLSL mod: the result has the sign of y.
func glslMod(x, y float64) float64 { return x - y*math.Floor(x/y) }
