package glyphwave

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Uniform names declared by the hero program. There are no textures.
const (
	UniformResolution = "Resolution"
	UniformTime       = "Time"
	UniformPixelSize  = "PixelSize"
	UniformSpeed      = "Speed"
)

// UniformNames lists the program's uniforms in binding order.
var UniformNames = []string{UniformResolution, UniformTime, UniformPixelSize, UniformSpeed}

// ProgramSource is the fragment program handed to a Surface. The vertex
// stage is Ebitengine's fixed pass-through, so only the fragment is carried.
type ProgramSource struct {
	Name     string
	Fragment string
	Uniforms []string
}

// kageConst is one entry of the generated constant block.
type kageConst struct {
	name  string
	value float64
}

// kageConstants is the single list of numbers the Kage program reads. Each
// entry is a Go constant from timing.go, pattern.go or composite.go.
func kageConstants() []kageConst {
	return []kageConst{
		{"Pi", math.Pi},
		{"TwoPi", 2 * math.Pi},
		{"SceneCount", SceneCount},
		{"HoldTime", HoldTime},
		{"TransitionTime", TransitionTime},
		{"CycleTime", CycleTime},
		{"TotalCycle", TotalCycle},
		{"TimeScale", TimeScale},

		{"WaveSourceRadius", waveSourceRadius},
		{"WaveNumber", waveNumber},
		{"WaveOrbitRate", waveOrbitRate},
		{"WaveFrequency", waveFrequency},
		{"WaveAmplitude", waveAmplitude},
		{"HexScale", hexScale},
		{"HexSpin", hexSpin},
		{"HexWall", hexWall},
		{"Sqrt3", sqrt3},
		{"VoronoiScale", voronoiScale},
		{"VoronoiEdgeWidth", voronoiEdgeWidth},
		{"SpiralArms", spiralArms},
		{"SpiralPitch", spiralPitch},
		{"SpiralSpin", spiralSpin},
		{"SpiralBaseWidth", spiralBaseWidth},
		{"SpiralGrowth", spiralGrowth},
		{"RingSpacing", ringSpacing},
		{"RingFlow", ringFlow},
		{"RingWidth", ringWidth},

		{"ZeroTint", zeroTint},
		{"OneTint", oneTint},
		{"GlyphUnits", glyphUnits},
		{"NebulaGain", nebulaGain},
		{"StarDensity", starDensity},
		{"StarBlink", starBlink},
		{"StarDuty", starDuty},
	}
}

// patternKageFuncs names the Kage field functions in Patterns order.
var patternKageFuncs = [SceneCount]string{
	"waveField",
	"honeycombField",
	"voronoiField",
	"spiralField",
	"ringField",
}

var heroSource = sync.OnceValue(func() ProgramSource {
	return ProgramSource{
		Name:     "glyphwave-hero",
		Fragment: buildKage(),
		Uniforms: UniformNames,
	}
})

// HeroProgram returns the generated hero program. It is built once.
func HeroProgram() ProgramSource {
	return heroSource()
}

func buildKage() string {
	var b strings.Builder
	b.WriteString("//kage:unit pixels\n\npackage main\n\n")
	b.WriteString("var Resolution vec2\nvar Time float\nvar PixelSize float\nvar Speed float\n\n")

	for _, c := range kageConstants() {
		fmt.Fprintf(&b, "const %s = %s\n", c.name, kageFloat(c.value))
	}
	b.WriteString("\n")

	writeCascade(&b, "background", func(s SceneDescriptor) Color { return s.Palette.Background })
	writeCascade(&b, "foreground", func(s SceneDescriptor) Color { return s.Palette.Foreground })

	b.WriteString("func nebula(p vec2) vec3 {\n")
	b.WriteString("\ts := (atan2(p.y, p.x) + Pi) / TwoPi * SceneCount\n")
	fmt.Fprintf(&b, "\tc := %s\n", kageVec3(NebulaHues[0]))
	for i := 0; i < SceneCount; i++ {
		fmt.Fprintf(&b, "\tc = mix(c, %s, smoothstep(0.0, 1.0, s-%s))\n",
			kageVec3(NebulaHues[(i+1)%SceneCount]), kageFloat(float64(i)))
	}
	b.WriteString("\tglow := 0.2 + 0.8*exp(-2.5*length(p))\n\treturn c * glow\n}\n\n")

	b.WriteString("func blendedField(p vec2, t float, phase float) float {\n")
	b.WriteString("\td := waveField(p, t)\n")
	for i := 0; i < SceneCount; i++ {
		fmt.Fprintf(&b, "\td = mix(d, %s(p, t), clamp(phase-%s, 0.0, 1.0))\n",
			patternKageFuncs[(i+1)%SceneCount], kageFloat(float64(i)))
	}
	b.WriteString("\treturn d\n}\n")

	b.WriteString(kageBody)
	return b.String()
}

func writeCascade(b *strings.Builder, name string, pick func(SceneDescriptor) Color) {
	fmt.Fprintf(b, "func %s(phase float) vec3 {\n", name)
	fmt.Fprintf(b, "\tc := %s\n", kageVec3(pick(Scenes[0])))
	for i := 0; i < SceneCount; i++ {
		fmt.Fprintf(b, "\tc = mix(c, %s, clamp(phase-%s, 0.0, 1.0))\n",
			kageVec3(pick(Scenes[(i+1)%SceneCount])), kageFloat(float64(i)))
	}
	b.WriteString("\treturn c\n}\n\n")
}

// kageFloat formats v as a Kage float literal. Integral values keep a ".0" so
// they are never read as int constants.
func kageFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func kageVec3(c Color) string {
	return fmt.Sprintf("vec3(%s, %s, %s)", kageFloat(c.R), kageFloat(c.G), kageFloat(c.B))
}

// kageBody holds the fixed part of the program. It mirrors pattern.go and
// composite.go line for line; the scene scheduler in Fragment is PhaseAt.
const kageBody = `
func hash12(p vec2) float {
	return fract(sin(dot(p, vec2(127.1, 311.7))) * 43758.5453)
}

func hash22(p vec2) vec2 {
	return vec2(
		fract(sin(dot(p, vec2(127.1, 311.7)))*43758.5453),
		fract(sin(dot(p, vec2(269.5, 183.3)))*43758.5453),
	)
}

func rotate2(p vec2, a float) vec2 {
	c := cos(a)
	s := sin(a)
	return vec2(p.x*c-p.y*s, p.x*s+p.y*c)
}

func waveField(p vec2, t float) float {
	sum := 0.0
	for i := 0; i < 3; i++ {
		a := float(i)*TwoPi/3.0 + t*WaveOrbitRate
		src := vec2(cos(a), sin(a)) * WaveSourceRadius
		sum += cos(WaveNumber*length(p-src) - t*WaveFrequency)
	}
	return -(sum / 3.0) * WaveAmplitude
}

func hexDist(v vec2) float {
	av := abs(v)
	return max(av.x*0.5+av.y*(Sqrt3*0.5), av.x)
}

func honeycombField(p vec2, t float) float {
	q := rotate2(p, t*HexSpin) * HexScale
	s := vec2(1.0, Sqrt3)
	a := mod(q, s) - s*0.5
	b := mod(q-s*0.5, s) - s*0.5
	gv := a
	if dot(b, b) < dot(a, a) {
		gv = b
	}
	return (0.5 - hexDist(gv)) - HexWall
}

func voronoiPoint(cell vec2, t float) vec2 {
	h := hash22(cell)
	return vec2(0.5) + 0.5*sin(vec2(t)+TwoPi*h)
}

func voronoiEdge(q vec2, t float) float {
	n := floor(q)
	f := q - n
	mg := vec2(0.0)
	mr := vec2(0.0)
	md := 8.0
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			g := vec2(float(i), float(j))
			r := g + voronoiPoint(n+g, t) - f
			d := dot(r, r)
			if d < md {
				md = d
				mr = r
				mg = g
			}
		}
	}
	md = 8.0
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			g := mg + vec2(float(i), float(j))
			r := g + voronoiPoint(n+g, t) - f
			diff := mr - r
			if dot(diff, diff) > 0.00001 {
				md = min(md, dot(0.5*(mr+r), normalize(r-mr)))
			}
		}
	}
	return md
}

func voronoiField(p vec2, t float) float {
	return voronoiEdge(p*VoronoiScale, t) - VoronoiEdgeWidth
}

func spiralField(p vec2, t float) float {
	r := length(p)
	theta := atan2(p.y, p.x)
	ideal := log(max(r, 0.0001))/SpiralPitch + t*SpiralSpin
	sector := TwoPi / SpiralArms
	dev := mod(theta-ideal+sector*0.5, sector) - sector*0.5
	return abs(dev)*r - (SpiralBaseWidth + SpiralGrowth*r)
}

func ringField(p vec2, t float) float {
	r := length(p)
	theta := atan2(p.y, p.x)
	wobble := 0.04*sin(3.0*theta+t) + 0.025*sin(5.0*theta-1.3*t) + 0.015*sin(7.0*theta+0.7*t)
	m := mod(r+wobble-t*RingFlow, RingSpacing)
	return min(m, RingSpacing-m) - RingWidth
}

func sdEllipse(p vec2, r vec2) float {
	return (length(p/r) - 1.0) * min(r.x, r.y)
}

func sdBox(p vec2, b vec2) float {
	d := abs(p) - b
	return length(max(d, vec2(0.0))) + min(max(d.x, d.y), 0.0)
}

func zeroGlyph(l vec2) float {
	c := l - vec2(2.5, 2.5)
	return max(sdEllipse(c, vec2(1.7, 2.2)), -sdEllipse(c, vec2(0.85, 1.35)))
}

func oneGlyph(l vec2) float {
	bar := sdBox(l-vec2(2.75, 2.5), vec2(0.45, 2.1))
	serif := sdBox(l-vec2(1.95, 1.05), vec2(0.55, 0.3))
	foot := sdBox(l-vec2(2.75, 4.35), vec2(1.25, 0.28))
	return min(bar, min(serif, foot))
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	st := Time * Speed * TimeScale
	cyclePos := mod(st, TotalCycle)
	index := mod(floor(cyclePos/CycleTime), SceneCount)
	within := mod(cyclePos, CycleTime)
	transition := 0.0
	if within > HoldTime {
		transition = smoothstep(0.0, 1.0, (within-HoldTime)/TransitionTime)
	}
	phase := index + transition

	cellPx := max(PixelSize, 1.0)
	cell := floor(dstPos.xy / cellPx)
	local := fract(dstPos.xy/cellPx) * GlyphUnits
	centre := (cell + vec2(0.5)) * cellPx
	p := (centre - Resolution*0.5) / Resolution.y * 2.0
	one := blendedField(p, st, phase) <= 0.0

	bg := background(phase)
	fg := foreground(phase)
	tint := ZeroTint
	g := zeroGlyph(local)
	if one {
		tint = OneTint
		g = oneGlyph(local)
	}
	digit := mix(bg, fg, tint)
	half := GlyphUnits / cellPx * 0.5
	coverage := 1.0 - smoothstep(-half, half, g)
	c := mix(bg, digit, coverage)

	shell := smoothstep(2.6, 3.0, phase) * (1.0 - smoothstep(3.6, 4.0, phase))
	if shell > 0.0 {
		c += nebula(p) * shell * NebulaGain
		if hash12(cell) > StarDensity {
			if fract(StarBlink*st+hash12(cell+vec2(17.0))) < StarDuty {
				c = mix(c, vec3(1.0), shell*coverage)
			}
		}
	}
	return vec4(clamp(c, 0.0, 1.0), 1.0)
}
`
