package glyphwave

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ShaderSurface draws the hero program with Ebitengine's Kage backend into
// an unmanaged image. Ebitengine targets WebGL in the browser, so this is
// the GPU path on every platform.
type ShaderSurface struct {
	target   *ebiten.Image
	program  *Program
	shader   *ebiten.Shader
	vertices [4]ebiten.Vertex
	indices  [6]uint16
	uniforms map[string]any
	w, h     int
	released bool
}

// NewShaderSurface creates a surface of the given size. The target image is
// allocated on the first Viewport call.
func NewShaderSurface(w, h int) *ShaderSurface {
	return &ShaderSurface{
		w:        w,
		h:        h,
		uniforms: make(map[string]any, len(UniformNames)),
	}
}

// Compile builds the Kage program.
func (s *ShaderSurface) Compile(src ProgramSource) (*Program, error) {
	if s.released {
		return nil, ErrSurfaceReleased
	}
	sh, err := ebiten.NewShader([]byte(src.Fragment))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, src.Name, err)
	}
	if s.shader != nil {
		s.shader.Deallocate()
	}
	s.shader = sh
	s.program = &Program{Source: src, shader: sh}
	return s.program, nil
}

// BindUniforms resolves names against the program's declared uniforms.
func (s *ShaderSurface) BindUniforms(p *Program, names []string) (map[string]int, error) {
	return bindUniforms(p, names)
}

// UploadQuad fills the two triangles covering the target.
func (s *ShaderSurface) UploadQuad() {
	s.indices = [6]uint16{0, 1, 2, 1, 2, 3}
	s.layoutQuad()
}

func (s *ShaderSurface) layoutQuad() {
	w, h := float32(s.w), float32(s.h)
	corners := [4][2]float32{{0, 0}, {w, 0}, {0, h}, {w, h}}
	for i, c := range corners {
		s.vertices[i] = ebiten.Vertex{
			DstX: c[0], DstY: c[1],
			SrcX: c[0], SrcY: c[1],
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
}

// Viewport resizes the target image, reallocating only when the size changes.
func (s *ShaderSurface) Viewport(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if s.target != nil && w == s.w && h == s.h {
		return
	}
	if s.target != nil {
		s.target.Deallocate()
	}
	s.w, s.h = w, h
	s.target = ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), &ebiten.NewImageOptions{Unmanaged: true})
	s.layoutQuad()
}

// Draw issues exactly one DrawTrianglesShader call.
func (s *ShaderSurface) Draw(u Uniforms) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if s.shader == nil || s.target == nil {
		return fmt.Errorf("glyphwave: draw before compile and viewport")
	}
	s.uniforms[UniformResolution] = []float32{float32(u.Resolution.X), float32(u.Resolution.Y)}
	s.uniforms[UniformTime] = float32(u.Time)
	s.uniforms[UniformPixelSize] = float32(u.PixelSize)
	s.uniforms[UniformSpeed] = float32(u.Speed)

	op := &ebiten.DrawTrianglesShaderOptions{
		Uniforms:  s.uniforms,
		Blend:     ebiten.BlendCopy,
		AntiAlias: false,
	}
	s.target.DrawTrianglesShader(s.vertices[:], s.indices[:], s.shader, op)
	return nil
}

// Image returns the render target, or nil before the first Viewport.
func (s *ShaderSurface) Image() *ebiten.Image {
	return s.target
}

// Release deallocates the shader and the target image.
func (s *ShaderSurface) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.shader != nil {
		s.shader.Deallocate()
		s.shader = nil
	}
	if s.target != nil {
		s.target.Deallocate()
		s.target = nil
	}
	s.program = nil
}
