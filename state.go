package glyphwave

import "go.uber.org/zap"

// RenderState is everything a render loop mutates. One render thread owns it
// and passes it by pointer into its frame function, so hero instances never
// share state.
type RenderState struct {
	PixelSize float64
	Speed     float64
	Width     int
	Height    int
	Running   bool

	// LastScene is the most recently reported scene.
	LastScene SceneName

	fps   fpsMeter
	scene sceneSync
}

// NewRenderState returns a running state with the given parameters.
func NewRenderState(pixelSize, speed float64, w, h int) *RenderState {
	return &RenderState{
		PixelSize: pixelSize,
		Speed:     speed,
		Width:     min(max(w, 1), MaxCanvasEdge),
		Height:    min(max(h, 1), MaxCanvasEdge),
		Running:   true,
	}
}

// Apply folds a UI message into the state. Updates are partial and
// last-write-wins; absent fields keep their value, and anything after stop
// is ignored. Values are clamped with Message.Bounded. It reports whether the
// viewport size changed.
func (s *RenderState) Apply(m Message) (resized bool) {
	if !s.Running {
		return false
	}
	switch m.Type {
	case MsgUpdate:
		m = m.Bounded()
		if m.PixelSize != nil {
			s.PixelSize = *m.PixelSize
		}
		if m.Speed != nil {
			s.Speed = *m.Speed
		}
		if m.Width != nil && *m.Width != s.Width {
			s.Width, resized = *m.Width, true
		}
		if m.Height != nil && *m.Height != s.Height {
			s.Height, resized = *m.Height, true
		}
		Logger().Debug("apply update",
			zap.Float64("pixel_size", s.PixelSize), zap.Float64("speed", s.Speed),
			zap.Int("width", s.Width), zap.Int("height", s.Height))
	case MsgStop:
		s.Running = false
	}
	return resized
}

// Uniforms returns the uniform values for render time t.
func (s *RenderState) Uniforms(t float64) Uniforms {
	return Uniforms{
		Resolution: Vec2{float64(s.Width), float64(s.Height)},
		Time:       t,
		PixelSize:  s.PixelSize,
		Speed:      s.Speed,
	}
}

// observe records a frame at render time t and returns a scene event when
// one is due.
func (s *RenderState) observe(t float64) (SceneEvent, bool) {
	fps := s.fps.tick(t)
	ev, ok := s.scene.poll(t, s.Speed, fps)
	if ok {
		s.LastScene = ev.Scene
	}
	return ev, ok
}
