package glyphwave

import "time"

// SceneCheckInterval is how often, in render time, the loop recomputes the
// host scene.
const SceneCheckInterval = 100 * time.Millisecond

// sceneSync throttles scene reports: it checks at most every
// SceneCheckInterval and reports only when the scene name changes. The first
// check always reports.
type sceneSync struct {
	lastCheck float64
	checked   bool
	last      SceneName
}

// poll returns an event when a check is due and the scene changed.
func (s *sceneSync) poll(t, speed float64, fps int) (SceneEvent, bool) {
	if s.checked && t-s.lastCheck < SceneCheckInterval.Seconds() {
		return SceneEvent{}, false
	}
	s.lastCheck, s.checked = t, true
	st := HostSceneState(t, speed)
	if st.Scene == s.last {
		return SceneEvent{}, false
	}
	s.last = st.Scene
	return SceneEvent{Scene: st.Scene, Progress: st.Progress, FPS: fps}, true
}
