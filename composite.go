package glyphwave

import "math"

// Uniforms are the four values pushed to the shader every frame.
type Uniforms struct {
	Resolution Vec2    // canvas size in device pixels
	Time       float64 // seconds since the render loop started
	PixelSize  float64 // edge of one glyph cell in device pixels
	Speed      float64 // global time multiplier
}

// Compositing constants.
const (
	zeroTint    = 0.25 // digit '0' sits close to the background
	oneTint     = 0.85 // digit '1' sits close to the foreground
	glyphUnits  = 5.0  // glyph local space spans 0..glyphUnits per cell
	nebulaGain  = 0.35
	starDensity = 0.995 // hash threshold, about 0.5% of cells
	starBlink   = 0.8
	starDuty    = 0.35
)

// NebulaHues are blended around the cell's polar angle in the shell scene.
var NebulaHues = [SceneCount]Color{
	Hex("#ff6ec7"),
	Hex("#7b2ff7"),
	Hex("#2d9cdb"),
	Hex("#27ae60"),
	Hex("#f2c94c"),
}

// BackgroundAt cascades the scene backgrounds with the pattern blend weights.
func BackgroundAt(phase float64) Color {
	return cascade(phase, func(s SceneDescriptor) Color { return s.Palette.Background })
}

// ForegroundAt cascades the scene foregrounds with the pattern blend weights.
func ForegroundAt(phase float64) Color {
	return cascade(phase, func(s SceneDescriptor) Color { return s.Palette.Foreground })
}

// AccentAt cascades the scene accents. Only the host uses it, for theming.
func AccentAt(phase float64) Color {
	return cascade(phase, func(s SceneDescriptor) Color { return s.Palette.Accent })
}

func cascade(phase float64, pick func(SceneDescriptor) Color) Color {
	b := BlendWeights(phase)
	c := pick(Scenes[0])
	for i := 0; i < SceneCount; i++ {
		c = c.Mix(pick(Scenes[(i+1)%SceneCount]), b[i])
	}
	return c
}

// ShellWindow is the overlay weight of the shell scene: it rises across
// phase 2.6..3 and falls across 3.6..4.
func ShellWindow(phase float64) float64 {
	return smoothstep(2.6, 3, phase) * (1 - smoothstep(3.6, 4, phase))
}

// frameParams are the per-frame values shared by every cell.
type frameParams struct {
	scaled float64 // time * speed * TimeScale
	phase  Phase
	bg, fg Color
	shell  float64
	cell   float64 // clamped PixelSize
}

func newFrameParams(u Uniforms) frameParams {
	st := u.Time * u.Speed * TimeScale
	ph := phaseFromScaled(st)
	return frameParams{
		scaled: st,
		phase:  ph,
		bg:     BackgroundAt(ph.Value),
		fg:     ForegroundAt(ph.Value),
		shell:  ShellWindow(ph.Value),
		cell:   math.Max(u.PixelSize, 1),
	}
}

// CellShade is everything about a glyph cell that does not depend on the
// pixel inside it.
type CellShade struct {
	One        bool  // the cell centre is inside the blended shape
	Background Color // scene background
	Digit      Color // glyph colour
	Glow       Color // additive nebula term, zero outside the shell window
	Star       float64
}

// ShadeCell evaluates the blended field at the centre of a grid cell
// and resolves the cell's colours.
func ShadeCell(cell Vec2, u Uniforms) CellShade {
	return shadeCell(cell, u, newFrameParams(u))
}

func shadeCell(cell Vec2, u Uniforms, fp frameParams) CellShade {
	centre := cell.Add(Vec2{0.5, 0.5}).Scale(fp.cell)
	p := PatternSpace(centre, u.Resolution)
	one := BlendedField(p, fp.scaled, fp.phase.Value) <= 0

	tint := zeroTint
	if one {
		tint = oneTint
	}
	cs := CellShade{
		One:        one,
		Background: fp.bg,
		Digit:      fp.bg.Mix(fp.fg, tint),
	}
	if fp.shell > 0 {
		cs.Glow = nebulaAt(p).Scale(fp.shell * nebulaGain)
		if hash12(cell) > starDensity {
			on := 0.0
			if fract(starBlink*fp.scaled+hash12(cell.Add(Vec2{17, 17}))) < starDuty {
				on = 1
			}
			cs.Star = on * fp.shell
		}
	}
	return cs
}

// nebulaAt blends the five hues around the polar angle of p and applies a
// core glow that falls off from the origin.
func nebulaAt(p Vec2) Color {
	s := (math.Atan2(p.Y, p.X) + math.Pi) / (2 * math.Pi) * SceneCount
	c := NebulaHues[0]
	for i := 0; i < SceneCount; i++ {
		c = c.Mix(NebulaHues[(i+1)%SceneCount], smoothstep(0, 1, s-float64(i)))
	}
	glow := 0.2 + 0.8*math.Exp(-2.5*p.Len())
	return c.Scale(glow)
}

// Pixel composes the final colour for a pixel with the given glyph coverage.
func (cs CellShade) Pixel(coverage float64) Color {
	c := cs.Background.Mix(cs.Digit, coverage).Add(cs.Glow)
	if cs.Star > 0 {
		c = c.Mix(Color{1, 1, 1}, cs.Star*coverage)
	}
	return c.Clamp()
}

// glyphCoverage antialiases the digit SDF over one device pixel.
func glyphCoverage(local Vec2, one bool, cellPx float64) float64 {
	var g float64
	if one {
		g = OneGlyph(local)
	} else {
		g = ZeroGlyph(local)
	}
	half := glyphUnits / cellPx * 0.5
	return 1 - smoothstep(-half, half, g)
}

// cellOf splits a pixel coordinate into its grid cell and the glyph-local
// position inside it.
func cellOf(frag Vec2, cellPx float64) (cell, local Vec2) {
	cell = Vec2{math.Floor(frag.X / cellPx), math.Floor(frag.Y / cellPx)}
	local = Vec2{fract(frag.X / cellPx), fract(frag.Y / cellPx)}.Scale(glyphUnits)
	return cell, local
}

// ShadePixel is the reference colour of the pixel centred at frag. The Kage
// program and the software surface both reproduce it.
func ShadePixel(frag Vec2, u Uniforms) Color {
	fp := newFrameParams(u)
	cell, local := cellOf(frag, fp.cell)
	cs := shadeCell(cell, u, fp)
	return cs.Pixel(glyphCoverage(local, cs.One, fp.cell))
}
