package glyphwave

import "math"

// Scene timing. Every time-to-scene calculation, in Go and in the generated
// shader constant block, derives from these values.
const (
	HoldTime       = 4.0                       // seconds a scene is held
	TransitionTime = 1.5                       // seconds spent blending into the next scene
	CycleTime      = HoldTime + TransitionTime // one scene, hold plus transition
	TotalCycle     = SceneCount * CycleTime    // the whole five-scene loop

	// TimeScale is the shader's internal time multiplier. Scene time is
	// time * speed * TimeScale on both sides.
	TimeScale = 0.8

	// LeadOffset is added to the host's scaled time so UI theme changes land
	// slightly before the shader finishes its blend.
	LeadOffset = 1.0
)

// Phase is the scheduler output for one instant.
type Phase struct {
	Index       int     // current scene, 0..4
	Transition  float64 // eased blend progress into Index+1, 0 while held
	Value       float64 // Index + Transition, the "shape phase"
	WithinCycle float64 // seconds into the current hold+transition window
}

// PhaseAt evaluates the scheduler for elapsed seconds t and a speed factor.
// This is the same arithmetic the shader performs per pixel.
func PhaseAt(t, speedFactor float64) Phase {
	return phaseFromScaled(t * speedFactor)
}

func phaseFromScaled(st float64) Phase {
	cyclePos := glslMod(st, TotalCycle)
	index := int(math.Floor(cyclePos/CycleTime)) % SceneCount
	within := glslMod(cyclePos, CycleTime)
	transition := 0.0
	if within > HoldTime {
		transition = smoothstep(0, 1, (within-HoldTime)/TransitionTime)
	}
	return Phase{
		Index:       index,
		Transition:  transition,
		Value:       float64(index) + transition,
		WithinCycle: within,
	}
}

// ShaderPhase reproduces the shader's scheduler: uniform time and speed in,
// with the shader's internal TimeScale applied.
func ShaderPhase(time, speed float64) Phase {
	return PhaseAt(time, speed*TimeScale)
}

// SceneState is the host-side scene report.
type SceneState struct {
	Scene    SceneName
	Progress float64 // fraction through the current hold+transition window, [0, 1)
	Phase    Phase
}

// HostSceneState computes the scene the UI should theme for. It uses the
// shader's speed factor plus LeadOffset, so it runs a little ahead of the
// pixels.
func HostSceneState(time, speed float64) SceneState {
	return hostSceneState(time, speed, LeadOffset)
}

func hostSceneState(time, speed, lead float64) SceneState {
	p := phaseFromScaled(time*speed*TimeScale + lead)
	return SceneState{
		Scene:    SceneByIndex(p.Index).Name,
		Progress: p.WithinCycle / CycleTime,
		Phase:    p,
	}
}

// BlendWeights returns the cascaded weights b1..b5 for a shape phase. Weight
// i moves from 0 to 1 while phase goes from i to i+1, so at most one weight
// is strictly between 0 and 1 and only two neighbouring scenes contribute.
// Easing already happened in Phase.Transition, so b1 equals the transition
// progress during the first blend.
func BlendWeights(phase float64) [SceneCount]float64 {
	var b [SceneCount]float64
	for i := range b {
		b[i] = clamp(phase-float64(i), 0, 1)
	}
	return b
}
