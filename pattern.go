package glyphwave

import "math"

// PatternFunc is a signed field over pattern space. A result <= 0 is inside
// the shape (glyph '1'), > 0 is outside (glyph '0'). Implementations are pure.
type PatternFunc func(p Vec2, t float64) float64

// Patterns holds the field for each scene, indexed like Scenes.
var Patterns = [SceneCount]PatternFunc{
	WaveField,
	HoneycombField,
	VoronoiField,
	SpiralField,
	RingField,
}

// Pattern constants. The Kage program receives the same values through its
// generated constant block.
const (
	waveSourceRadius = 0.6
	waveNumber       = 2 * math.Pi / waveSourceRadius
	waveOrbitRate    = 0.3
	waveFrequency    = 2.0
	waveAmplitude    = 0.5

	hexScale = 4.0
	hexSpin  = 0.05
	hexWall  = 0.08
	sqrt3    = 1.7320508

	voronoiScale     = 3.0
	voronoiEdgeWidth = 0.06

	spiralArms      = 3.0
	spiralPitch     = 0.3
	spiralSpin      = 0.4
	spiralBaseWidth = 0.02
	spiralGrowth    = 0.3

	ringSpacing = 0.25
	ringFlow    = 0.1
	ringWidth   = 0.04
)

// PatternSpace maps a pixel coordinate to aspect-corrected pattern space:
// origin at the canvas centre, height spanning [-1, 1].
func PatternSpace(frag, res Vec2) Vec2 {
	return Vec2{
		X: (frag.X - res.X*0.5) / res.Y * 2,
		Y: (frag.Y - res.Y*0.5) / res.Y * 2,
	}
}

// WaveField sums three rotating point-source waves. No thresholding happens
// here; the caller takes step(d, 0).
func WaveField(p Vec2, t float64) float64 {
	sum := 0.0
	for i := 0; i < 3; i++ {
		a := float64(i)*2*math.Pi/3 + t*waveOrbitRate
		src := Vec2{math.Cos(a), math.Sin(a)}.Scale(waveSourceRadius)
		sum += math.Cos(waveNumber*p.Sub(src).Len() - t*waveFrequency)
	}
	return -(sum / 3) * waveAmplitude
}

// HoneycombField tiles slowly rotating hexagons. The walls are the shape.
func HoneycombField(p Vec2, t float64) float64 {
	q := rotate(p, t*hexSpin).Scale(hexScale)
	s := Vec2{1, sqrt3}
	a := Vec2{glslMod(q.X, s.X) - s.X*0.5, glslMod(q.Y, s.Y) - s.Y*0.5}
	b := Vec2{glslMod(q.X-s.X*0.5, s.X) - s.X*0.5, glslMod(q.Y-s.Y*0.5, s.Y) - s.Y*0.5}
	gv := a
	if b.Dot(b) < a.Dot(a) {
		gv = b
	}
	return (0.5 - hexDist(gv)) - hexWall
}

// hexDist is the distance from a hexagon centre in units where the flat
// sides sit at 0.5.
func hexDist(v Vec2) float64 {
	ax, ay := math.Abs(v.X), math.Abs(v.Y)
	return math.Max(ax*0.5+ay*(sqrt3*0.5), ax)
}

// VoronoiField is the distance to the nearest cell edge minus a line width.
// The edges are the shape.
func VoronoiField(p Vec2, t float64) float64 {
	return voronoiEdge(p.Scale(voronoiScale), t) - voronoiEdgeWidth
}

// voronoiPoint is the animated feature point of a lattice cell, as an offset
// inside the cell. Points orbit instead of jumping.
func voronoiPoint(cell Vec2, t float64) Vec2 {
	h := hash22(cell)
	return Vec2{
		X: 0.5 + 0.5*math.Sin(t+2*math.Pi*h.X),
		Y: 0.5 + 0.5*math.Sin(t+2*math.Pi*h.Y),
	}
}

// voronoiEdge runs the two-pass search: nearest feature point first, then the
// distance to the bisector with every neighbour of that point.
func voronoiEdge(q Vec2, t float64) float64 {
	n := Vec2{math.Floor(q.X), math.Floor(q.Y)}
	f := q.Sub(n)

	var mg, mr Vec2
	md := 8.0
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			g := Vec2{float64(i), float64(j)}
			r := g.Add(voronoiPoint(n.Add(g), t)).Sub(f)
			if d := r.Dot(r); d < md {
				md, mr, mg = d, r, g
			}
		}
	}

	md = 8.0
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			g := mg.Add(Vec2{float64(i), float64(j)})
			r := g.Add(voronoiPoint(n.Add(g), t)).Sub(f)
			diff := mr.Sub(r)
			if diff.Dot(diff) > 1e-5 {
				md = math.Min(md, mr.Add(r).Scale(0.5).Dot(normalize(r.Sub(mr))))
			}
		}
	}
	return md
}

// SpiralField draws a three-armed logarithmic spiral. The angular deviation
// from the ideal arm is turned into a linear distance by multiplying by r.
func SpiralField(p Vec2, t float64) float64 {
	r := p.Len()
	theta := math.Atan2(p.Y, p.X)
	ideal := math.Log(math.Max(r, 1e-4))/spiralPitch + t*spiralSpin
	sector := 2 * math.Pi / spiralArms
	dev := glslMod(theta-ideal+sector*0.5, sector) - sector*0.5
	return math.Abs(dev)*r - (spiralBaseWidth + spiralGrowth*r)
}

// RingField draws wobbling concentric rings that flow outward over time.
func RingField(p Vec2, t float64) float64 {
	r := p.Len()
	theta := math.Atan2(p.Y, p.X)
	wobble := 0.04*math.Sin(3*theta+t) +
		0.025*math.Sin(5*theta-1.3*t) +
		0.015*math.Sin(7*theta+0.7*t)
	m := glslMod(r+wobble-t*ringFlow, ringSpacing)
	return math.Min(m, ringSpacing-m) - ringWidth
}

// BlendedField cascades the five fields by the weights of phase, ending back
// at the wave field so the loop closes.
func BlendedField(p Vec2, t, phase float64) float64 {
	b := BlendWeights(phase)
	d := WaveField(p, t)
	for i := 0; i < SceneCount; i++ {
		if b[i] == 0 {
			continue
		}
		d = mix(d, Patterns[(i+1)%SceneCount](p, t), b[i])
	}
	return d
}

// --- Glyphs ---
// Glyph fields live in a local 0..5 square per grid cell, y pointing down.

// ZeroGlyph is an elliptical ring.
func ZeroGlyph(l Vec2) float64 {
	c := l.Sub(Vec2{2.5, 2.5})
	outer := sdEllipse(c, Vec2{1.7, 2.2})
	inner := sdEllipse(c, Vec2{0.85, 1.35})
	return math.Max(outer, -inner)
}

// OneGlyph is a vertical bar with a serif and a foot.
func OneGlyph(l Vec2) float64 {
	bar := sdBox(l.Sub(Vec2{2.75, 2.5}), Vec2{0.45, 2.1})
	serif := sdBox(l.Sub(Vec2{1.95, 1.05}), Vec2{0.55, 0.3})
	foot := sdBox(l.Sub(Vec2{2.75, 4.35}), Vec2{1.25, 0.28})
	return math.Min(bar, math.Min(serif, foot))
}

func sdEllipse(p, r Vec2) float64 {
	return (Vec2{p.X / r.X, p.Y / r.Y}.Len() - 1) * math.Min(r.X, r.Y)
}

func sdBox(p, b Vec2) float64 {
	dx := math.Abs(p.X) - b.X
	dy := math.Abs(p.Y) - b.Y
	outside := Vec2{math.Max(dx, 0), math.Max(dy, 0)}.Len()
	return outside + math.Min(math.Max(dx, dy), 0)
}

// --- Hashing and vector helpers ---

func hash12(p Vec2) float64 {
	return fract(math.Sin(p.X*127.1+p.Y*311.7) * 43758.5453)
}

func hash22(p Vec2) Vec2 {
	return Vec2{
		X: fract(math.Sin(p.X*127.1+p.Y*311.7) * 43758.5453),
		Y: fract(math.Sin(p.X*269.5+p.Y*183.3) * 43758.5453),
	}
}

func rotate(p Vec2, a float64) Vec2 {
	c, s := math.Cos(a), math.Sin(a)
	return Vec2{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

func normalize(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}
