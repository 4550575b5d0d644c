package glyphwave

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrOffscreenUnsupported reports that the platform cannot hand a canvas
	// to a render goroutine.
	ErrOffscreenUnsupported = errors.New("glyphwave: offscreen rendering unsupported")

	// ErrCanvasTransferred is returned when control of a canvas is requested
	// a second time.
	ErrCanvasTransferred = errors.New("glyphwave: canvas control already transferred")

	// ErrCanvasBusy is returned by Reclaim while the render goroutine still
	// holds the offscreen canvas open.
	ErrCanvasBusy = errors.New("glyphwave: canvas still owned by the render thread")

	// ErrShaderCompile wraps the backend's compile diagnostic.
	ErrShaderCompile = errors.New("glyphwave: shader compile failed")

	// ErrUnknownUniform is returned when a uniform name is not declared by
	// the program.
	ErrUnknownUniform = errors.New("glyphwave: unknown uniform")

	// ErrSurfaceReleased is returned by a surface used after Release.
	ErrSurfaceReleased = errors.New("glyphwave: surface released")

	// ErrUnavailable means neither execution path could build a surface.
	ErrUnavailable = errors.New("glyphwave: no render path available")
)

// Program is a compiled hero program bound to the surface that built it.
type Program struct {
	Source ProgramSource
	shader shaderHandle
}

// shaderHandle is the backend object behind a Program. The Kage surface
// stores its *ebiten.Shader here; the software kernel needs none.
type shaderHandle interface {
	Deallocate()
}

// Surface is the render backend: one program, one full-screen quad, four
// uniforms and one draw per frame.
type Surface interface {
	// Compile compiles and links src. A failure returns an error wrapping
	// ErrShaderCompile that carries the compiler diagnostic.
	Compile(src ProgramSource) (*Program, error)
	// BindUniforms resolves uniform names to locations.
	BindUniforms(p *Program, names []string) (map[string]int, error)
	// UploadQuad prepares the two-triangle quad covering the viewport.
	UploadQuad()
	// Viewport sets the drawing size in device pixels.
	Viewport(w, h int)
	// Draw pushes the uniforms and issues a single draw.
	Draw(u Uniforms) error
	// Release frees the program and any images. The surface is unusable
	// afterwards.
	Release()
}

// bindUniforms resolves names against the uniforms p declares. Locations are
// indices into the declaration order.
func bindUniforms(p *Program, names []string) (map[string]int, error) {
	if p == nil {
		return nil, fmt.Errorf("glyphwave: bind uniforms: %w", ErrSurfaceReleased)
	}
	locs := make(map[string]int, len(names))
	for _, name := range names {
		loc := -1
		for i, declared := range p.Source.Uniforms {
			if declared == name {
				loc = i
				break
			}
		}
		if loc < 0 {
			return nil, fmt.Errorf("%w: %q in program %s", ErrUnknownUniform, name, p.Source.Name)
		}
		locs[name] = loc
	}
	return locs, nil
}

// ExecutionContext is what a render thread owns for one mount: the surface,
// its program and the bound uniform locations.
type ExecutionContext struct {
	Mode      Mode
	Surface   Surface
	Program   *Program
	Locations map[string]int
}

// newExecutionContext runs the full surface setup: compile, bind, upload the
// quad and size the viewport. On any failure the surface is released.
func newExecutionContext(mode Mode, s Surface, w, h int) (*ExecutionContext, error) {
	src := HeroProgram()
	prog, err := s.Compile(src)
	if err != nil {
		Logger().Error("compile hero program",
			zap.Stringer("mode", mode), zap.String("program", src.Name), zap.Error(err))
		s.Release()
		return nil, err
	}
	locs, err := s.BindUniforms(prog, UniformNames)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.UploadQuad()
	s.Viewport(w, h)
	return &ExecutionContext{Mode: mode, Surface: s, Program: prog, Locations: locs}, nil
}

// Draw renders one frame.
func (ec *ExecutionContext) Draw(u Uniforms) error {
	return ec.Surface.Draw(u)
}

// Close releases the surface.
func (ec *ExecutionContext) Close() {
	ec.Surface.Release()
}
