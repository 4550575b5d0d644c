package glyphwave

import (
	"time"

	"go.uber.org/zap"
)

// debugReportFrames is how many frames frameStats aggregates per log line.
const debugReportFrames = 120

// frameStats aggregates per-frame draw cost and logs a summary at debug
// level. Only populated when the hero runs with Debug set.
type frameStats struct {
	enabled bool
	log     *zap.Logger

	frames int
	total  time.Duration
	worst  time.Duration
}

func newFrameStats(log *zap.Logger, mode Mode, enabled bool) *frameStats {
	return &frameStats{enabled: enabled, log: log.With(zap.Stringer("mode", mode))}
}

// record adds one frame. Every debugReportFrames frames it logs the average
// and worst draw time together with the render state.
func (s *frameStats) record(cost time.Duration, t float64, state *RenderState) {
	if s == nil || !s.enabled {
		return
	}
	s.frames++
	s.total += cost
	s.worst = max(s.worst, cost)
	if s.frames < debugReportFrames {
		return
	}
	s.log.Debug("frame stats",
		zap.Duration("avg", s.total/time.Duration(s.frames)),
		zap.Duration("worst", s.worst),
		zap.Float64("t", t),
		zap.String("scene", string(state.LastScene)),
		zap.Float64("pixel_size", state.PixelSize),
		zap.Int("width", state.Width),
		zap.Int("height", state.Height),
	)
	s.frames, s.total, s.worst = 0, 0, 0
}
