package glyphwave

import (
	"math"
	"testing"
)

const phaseEps = 1e-9

// nearEdge reports whether a phase sits so close to a bucket boundary that a
// one-ulp difference in arithmetic order could move it across.
func nearEdge(p Phase) bool {
	return p.WithinCycle < 1e-6 || p.WithinCycle > CycleTime-1e-6
}

// --- Constants ---

func TestCycleConstants(t *testing.T) {
	if CycleTime != 5.5 {
		t.Errorf("CycleTime = %v, want 5.5", CycleTime)
	}
	if TotalCycle != 27.5 {
		t.Errorf("TotalCycle = %v, want 27.5", TotalCycle)
	}
}

// --- Scenarios ---

func TestPhaseAtStart(t *testing.T) {
	p := PhaseAt(0, 1)
	if p.Index != 0 {
		t.Errorf("Index = %d, want 0", p.Index)
	}
	if p.Transition != 0 {
		t.Errorf("Transition = %v, want 0", p.Transition)
	}
	if SceneByIndex(p.Index).Name != SceneWater {
		t.Errorf("scene = %q, want water", SceneByIndex(p.Index).Name)
	}
	st := hostSceneState(0, 1, 0)
	if st.Progress != 0 {
		t.Errorf("Progress = %v, want 0", st.Progress)
	}
}

func TestPhaseAtEarlyTransition(t *testing.T) {
	p := PhaseAt(4.4, 1)
	if p.Index != 0 {
		t.Errorf("Index = %d, want 0", p.Index)
	}
	want := smoothstep(0, 1, 0.4/1.5)
	if math.Abs(p.Transition-want) > 1e-9 {
		t.Errorf("Transition = %v, want %v", p.Transition, want)
	}
	if math.Abs(p.Transition-0.1754) > 1e-3 {
		t.Errorf("Transition = %v, want ~0.1754", p.Transition)
	}
	b := BlendWeights(p.Value)
	if math.Abs(b[0]-p.Transition) > phaseEps {
		t.Errorf("b1 = %v, want %v", b[0], p.Transition)
	}
	for i := 1; i < SceneCount; i++ {
		if b[i] != 0 {
			t.Errorf("b%d = %v, want 0", i+1, b[i])
		}
	}
}

func TestPhaseAtFullCycleMatchesStart(t *testing.T) {
	got := PhaseAt(27.5, 1)
	want := PhaseAt(0, 1)
	if got != want {
		t.Errorf("PhaseAt(27.5) = %+v, want %+v", got, want)
	}
}

// --- Properties ---

func TestSceneIndexIsPeriodic(t *testing.T) {
	for _, speed := range []float64{0.5, 1, 2, 3.7} {
		period := TotalCycle / speed
		for i := 0; i < 400; i++ {
			tm := float64(i)*0.137 + 0.011
			a, b := PhaseAt(tm, speed), PhaseAt(tm+period, speed)
			if nearEdge(a) {
				continue
			}
			if a.Index != b.Index {
				t.Fatalf("speed %v t=%v: Index %d, after one period %d", speed, tm, a.Index, b.Index)
			}
		}
	}
}

func TestPhaseMonotonicWithinCycle(t *testing.T) {
	prev := PhaseAt(0, 1).Value
	for tm := 0.01; tm < TotalCycle; tm += 0.01 {
		v := PhaseAt(tm, 1).Value
		if v < prev-phaseEps {
			t.Fatalf("phase went from %v to %v at t=%v", prev, v, tm)
		}
		prev = v
	}
}

func TestTransitionEndpoints(t *testing.T) {
	for i := 0; i < SceneCount; i++ {
		start := float64(i) * CycleTime
		if p := PhaseAt(start, 1); p.Transition != 0 {
			t.Errorf("scene %d start: Transition = %v, want 0", i, p.Transition)
		}
		if p := PhaseAt(start+HoldTime, 1); p.Transition != 0 {
			t.Errorf("scene %d end of hold: Transition = %v, want 0", i, p.Transition)
		}
		end := PhaseAt(start+CycleTime-1e-7, 1)
		if end.Index != i {
			t.Errorf("scene %d end: Index = %d", i, end.Index)
		}
		if end.Transition < 1-1e-6 {
			t.Errorf("scene %d end: Transition = %v, want ~1", i, end.Transition)
		}
	}
}

func TestHostAgreesWithShader(t *testing.T) {
	for _, speed := range []float64{0.25, 1, 1.5, 2} {
		for i := 0; i < 500; i++ {
			tm := float64(i) * 0.173
			shader := ShaderPhase(tm, speed)
			if nearEdge(shader) {
				continue
			}
			host := hostSceneState(tm, speed, 0)
			if host.Phase.Index != shader.Index {
				t.Fatalf("speed %v t=%v: host index %d, shader %d", speed, tm, host.Phase.Index, shader.Index)
			}
			if math.Abs(host.Phase.WithinCycle-shader.WithinCycle) > 1e-6 {
				t.Fatalf("speed %v t=%v: host within %v, shader %v", speed, tm, host.Phase.WithinCycle, shader.WithinCycle)
			}
		}
	}
}

func TestHostLeadsShader(t *testing.T) {
	// 4.7s of scaled time is water blending out for the shader; with the
	// lead it is 5.7s, already hive.
	tm := 4.7 / TimeScale
	if got := ShaderPhase(tm, 1).Index; got != 0 {
		t.Fatalf("shader index = %d, want 0", got)
	}
	if got := HostSceneState(tm, 1).Scene; got != SceneHive {
		t.Errorf("host scene = %q, want hive", got)
	}
}

func TestHostProgressRange(t *testing.T) {
	for i := 0; i < 300; i++ {
		st := HostSceneState(float64(i)*0.31, 1)
		if st.Progress < 0 || st.Progress >= 1 {
			t.Fatalf("Progress = %v, want [0, 1)", st.Progress)
		}
	}
}

// --- BlendWeights ---

func TestBlendWeightsAtMostOneFractional(t *testing.T) {
	for phase := 0.0; phase <= 5; phase += 0.05 {
		b := BlendWeights(phase)
		fractional := 0
		for _, w := range b {
			if w < 0 || w > 1 {
				t.Fatalf("phase %v: weight %v out of range", phase, w)
			}
			if w > 0 && w < 1 {
				fractional++
			}
		}
		if fractional > 1 {
			t.Fatalf("phase %v: %d fractional weights", phase, fractional)
		}
	}
}

func TestBlendWeightsIntegerPhase(t *testing.T) {
	b := BlendWeights(3)
	want := [SceneCount]float64{1, 1, 1, 0, 0}
	if b != want {
		t.Errorf("BlendWeights(3) = %v, want %v", b, want)
	}
}

// --- Scene table ---

func TestSceneByIndexWraps(t *testing.T) {
	if got := SceneByIndex(5).Name; got != SceneWater {
		t.Errorf("SceneByIndex(5) = %q, want water", got)
	}
	if got := SceneByIndex(-1).Name; got != SceneWood {
		t.Errorf("SceneByIndex(-1) = %q, want wood", got)
	}
}

func TestSceneByName(t *testing.T) {
	d, ok := SceneByName(SceneShell)
	if !ok || d.Index != 3 {
		t.Errorf("SceneByName(shell) = %+v, %v", d, ok)
	}
	if _, ok := SceneByName("lava"); ok {
		t.Error("SceneByName(lava) should fail")
	}
}

func TestHex(t *testing.T) {
	c := Hex("#ff8000")
	if c.R != 1 || c.B != 0 || math.Abs(c.G-128.0/255) > 1e-12 {
		t.Errorf("Hex(#ff8000) = %+v", c)
	}
	if Hex("zz0000") != (Color{}) {
		t.Error("malformed hex should be black")
	}
}

func TestGLSLModSign(t *testing.T) {
	if got := glslMod(-1, 5); got != 4 {
		t.Errorf("glslMod(-1, 5) = %v, want 4", got)
	}
}
