package glyphwave

import (
	"testing"
	"time"
)

func TestFrameSchedulerRunsOnce(t *testing.T) {
	var s frameScheduler
	calls := 0
	s.Request(func(time.Time) { calls++ })
	if n := s.RunFrame(time.Now()); n != 1 {
		t.Errorf("RunFrame = %d, want 1", n)
	}
	if n := s.RunFrame(time.Now()); n != 0 {
		t.Errorf("second RunFrame = %d, want 0", n)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFrameSchedulerCancel(t *testing.T) {
	var s frameScheduler
	ran := false
	tok := s.Request(func(time.Time) { ran = true })
	tok.Cancel()
	s.RunFrame(time.Now())
	if ran {
		t.Error("cancelled callback ran")
	}
	if !tok.Cancelled() {
		t.Error("Cancelled = false")
	}
	var nilTok *FrameToken
	nilTok.Cancel()
	if nilTok.Cancelled() {
		t.Error("nil token reports cancelled")
	}
}

func TestFrameSchedulerCancelDuringFrame(t *testing.T) {
	var s frameScheduler
	var second *FrameToken
	ran := false
	s.Request(func(time.Time) { second.Cancel() })
	second = s.Request(func(time.Time) { ran = true })
	s.RunFrame(time.Now())
	if ran {
		t.Error("callback cancelled earlier in the same frame ran")
	}
}

func TestFrameSchedulerDefersReentrantRequests(t *testing.T) {
	var s frameScheduler
	frames := 0
	var loop func(time.Time)
	loop = func(time.Time) {
		frames++
		s.Request(loop)
	}
	s.Request(loop)
	s.RunFrame(time.Now())
	s.RunFrame(time.Now())
	if frames != 2 {
		t.Errorf("frames = %d, want 2", frames)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", s.Pending())
	}
}

// --- Idle task ---

func TestIdleTaskRunsAfterPaint(t *testing.T) {
	now := time.Now()
	ran := 0
	task := newIdleTask(now, time.Second, func() { ran++ })
	if task.poll(now) {
		t.Error("ran before paint")
	}
	task.markPainted()
	if !task.poll(now) {
		t.Error("did not run after paint")
	}
	task.poll(now)
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
}

func TestIdleTaskDeadline(t *testing.T) {
	now := time.Now()
	ran := false
	task := newIdleTask(now, 0, func() { ran = true })
	task.poll(now.Add(DefaultIdleTimeout - time.Nanosecond))
	if ran {
		t.Fatal("ran before the default deadline")
	}
	task.poll(now.Add(DefaultIdleTimeout))
	if !ran {
		t.Error("did not run at the deadline")
	}
}

func TestIdleTaskCancel(t *testing.T) {
	now := time.Now()
	task := newIdleTask(now, time.Second, func() { t.Error("cancelled task ran") })
	task.cancel()
	task.markPainted()
	task.poll(now.Add(time.Hour))

	var nilTask *idleTask
	nilTask.cancel()
	if nilTask.poll(now) {
		t.Error("nil task ran")
	}
}
