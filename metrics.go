package glyphwave

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the hero's Prometheus instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	// FPS is the last frame-rate sample reported by a render loop.
	FPS *prometheus.GaugeVec
	// Scene is the index of the current scene.
	Scene *prometheus.GaugeVec
	// SceneChanges counts sceneUpdate messages by scene name.
	SceneChanges *prometheus.CounterVec
	// Fallbacks counts worker-to-main-thread fallbacks by reason.
	Fallbacks *prometheus.CounterVec
	// Mode is 1 for the active execution mode of each hero.
	Mode *prometheus.GaugeVec
	// FrameSeconds observes render loop frame cost.
	FrameSeconds *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments with reg. Passing nil uses a fresh
// registry, which keeps tests and multiple heroes from colliding.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		FPS: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "glyphwave_fps",
			Help: "Frames per second over the last sampling window",
		}, []string{"hero"}),
		Scene: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "glyphwave_scene_index",
			Help: "Index of the scene currently reported to the UI",
		}, []string{"hero"}),
		SceneChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "glyphwave_scene_changes_total",
			Help: "Total number of scene updates by scene",
		}, []string{"scene"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "glyphwave_fallbacks_total",
			Help: "Total number of worker to main thread fallbacks by reason",
		}, []string{"reason"}),
		Mode: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "glyphwave_mode",
			Help: "Active execution mode per hero",
		}, []string{"hero", "mode"}),
		FrameSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "glyphwave_frame_seconds",
			Help:    "Time spent rendering one frame",
			Buckets: []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.133},
		}, []string{"mode"}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeScene(hero string, ev SceneEvent) {
	if m == nil {
		return
	}
	if d, ok := SceneByName(ev.Scene); ok {
		m.Scene.WithLabelValues(hero).Set(float64(d.Index))
	}
	m.SceneChanges.WithLabelValues(string(ev.Scene)).Inc()
	m.FPS.WithLabelValues(hero).Set(float64(ev.FPS))
}

func (m *Metrics) observeFallback(reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeMode(hero string, mode Mode) {
	if m == nil {
		return
	}
	for _, md := range []Mode{ModeWorker, ModeMainThread} {
		v := 0.0
		if md == mode {
			v = 1
		}
		m.Mode.WithLabelValues(hero, md.String()).Set(v)
	}
}

func (m *Metrics) observeFrame(mode Mode, seconds float64) {
	if m == nil {
		return
	}
	m.FrameSeconds.WithLabelValues(mode.String()).Observe(seconds)
}
