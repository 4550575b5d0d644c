package glyphwave

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Platform is what the hero needs from its environment. The default is
// EbitenPlatform; tests and headless tools substitute their own.
type Platform interface {
	// OffscreenSupported reports whether a canvas can be handed to a render
	// goroutine at all.
	OffscreenSupported() bool
	// SpawnWorker starts run on a render goroutine. An error here is a
	// synchronous worker setup failure.
	SpawnWorker(run func()) error
	// NewOffscreenSurface creates the render goroutine's surface.
	NewOffscreenSurface(c *OffscreenCanvas) (Surface, error)
	// NewMainSurface creates the UI loop's surface.
	NewMainSurface(w, h int) (Surface, error)
}

// EbitenPlatform renders on the GPU through Kage on the UI loop. The worker
// runs the software kernel, which is far slower than the GPU program at
// window sizes, so it is only offered when Offscreen is set.
type EbitenPlatform struct {
	Offscreen bool
}

// OffscreenSupported reports whether the worker was opted into. It is always
// false on js/wasm, where goroutines share the single browser thread and a
// worker would only steal time from the UI.
func (p EbitenPlatform) OffscreenSupported() bool {
	return p.Offscreen && runtime.GOOS != "js"
}

// SpawnWorker runs fn on a new goroutine.
func (EbitenPlatform) SpawnWorker(run func()) error {
	go run()
	return nil
}

// NewOffscreenSurface returns a software surface drawing into c.
func (EbitenPlatform) NewOffscreenSurface(c *OffscreenCanvas) (Surface, error) {
	return NewSoftwareSurface(c), nil
}

// NewMainSurface returns a Kage surface.
func (EbitenPlatform) NewMainSurface(w, h int) (Surface, error) {
	return NewShaderSurface(w, h), nil
}

// HeadlessPlatform renders everything in software and never uses a worker.
// Posters and timeline scripts run on it.
type HeadlessPlatform struct{}

// OffscreenSupported is always false.
func (HeadlessPlatform) OffscreenSupported() bool { return false }

// SpawnWorker always fails with ErrOffscreenUnsupported.
func (HeadlessPlatform) SpawnWorker(func()) error { return ErrOffscreenUnsupported }

// NewOffscreenSurface returns a software surface drawing into c.
func (HeadlessPlatform) NewOffscreenSurface(c *OffscreenCanvas) (Surface, error) {
	return NewSoftwareSurface(c), nil
}

// NewMainSurface returns a software surface over a private canvas.
func (HeadlessPlatform) NewMainSurface(w, h int) (Surface, error) {
	return NewSoftwareSurface(NewOffscreenCanvas(w, h)), nil
}

// probeOffscreen checks that a 1×1 offscreen surface can compile the hero
// program. A panic counts as a failure.
func probeOffscreen(p Platform) (ok bool) {
	if !p.OffscreenSupported() {
		return false
	}
	err := safely(func() error {
		s, err := p.NewOffscreenSurface(NewOffscreenCanvas(1, 1))
		if err != nil {
			return err
		}
		defer s.Release()
		_, err = s.Compile(HeroProgram())
		return err
	})
	if err != nil {
		Logger().Warn("offscreen probe failed", zap.Error(err))
		return false
	}
	return true
}

// safely runs fn and turns a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("glyphwave: recovered panic: %v", r)
		}
	}()
	return fn()
}
