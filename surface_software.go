package glyphwave

import (
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SoftwareSurface runs the Go kernel on the CPU into an OffscreenCanvas. It
// is the render goroutine's surface and the headless surface for posters and
// timeline scripts.
type SoftwareSurface struct {
	target   *OffscreenCanvas
	program  *Program
	quad     bool
	w, h     int
	workers  int
	cells    []CellShade // per-frame cell cache, cols*rows
	released bool
}

// NewSoftwareSurface creates a surface drawing into target.
func NewSoftwareSurface(target *OffscreenCanvas) *SoftwareSurface {
	w, h := target.Size()
	return &SoftwareSurface{
		target:  target,
		w:       w,
		h:       h,
		workers: runtime.GOMAXPROCS(0),
	}
}

// Compile links src against the Go kernel. Only the hero program has a
// kernel; anything else fails like a shader with a compile error.
func (s *SoftwareSurface) Compile(src ProgramSource) (*Program, error) {
	if s.released {
		return nil, ErrSurfaceReleased
	}
	if src.Fragment != HeroProgram().Fragment {
		return nil, fmt.Errorf("%w: %s: no software kernel for this program", ErrShaderCompile, src.Name)
	}
	s.program = &Program{Source: src}
	return s.program, nil
}

// BindUniforms resolves names against the program's declared uniforms.
func (s *SoftwareSurface) BindUniforms(p *Program, names []string) (map[string]int, error) {
	return bindUniforms(p, names)
}

// UploadQuad is a no-op beyond bookkeeping: the kernel covers every pixel.
func (s *SoftwareSurface) UploadQuad() {
	s.quad = true
}

// Viewport sets the back buffer size for subsequent frames.
func (s *SoftwareSurface) Viewport(w, h int) {
	s.w, s.h = max(w, 1), max(h, 1)
}

// Size returns the viewport size.
func (s *SoftwareSurface) Size() (int, int) {
	return s.w, s.h
}

// Target returns the canvas the surface commits to.
func (s *SoftwareSurface) Target() *OffscreenCanvas {
	return s.target
}

// Draw shades every cell once, then every pixel, and commits the frame.
func (s *SoftwareSurface) Draw(u Uniforms) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if s.program == nil || !s.quad {
		return fmt.Errorf("glyphwave: draw before compile and quad upload")
	}
	buf := s.target.BackBuffer(s.w, s.h)
	if err := s.render(buf, u); err != nil {
		return err
	}
	s.target.Commit()
	return nil
}

// render fills buf. Rows of cells, then bands of pixel rows, are split across
// an errgroup.
func (s *SoftwareSurface) render(buf *image.RGBA, u Uniforms) error {
	fp := newFrameParams(u)
	cols := int(math.Ceil(float64(s.w) / fp.cell))
	rows := int(math.Ceil(float64(s.h) / fp.cell))
	if n := cols * rows; cap(s.cells) < n {
		s.cells = make([]CellShade, n)
	} else {
		s.cells = s.cells[:n]
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for cy := 0; cy < rows; cy++ {
		g.Go(func() error {
			for cx := 0; cx < cols; cx++ {
				s.cells[cy*cols+cx] = shadeCell(Vec2{float64(cx), float64(cy)}, u, fp)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var pg errgroup.Group
	pg.SetLimit(s.workers)
	band := max(1, s.h/(s.workers*4))
	for y0 := 0; y0 < s.h; y0 += band {
		y1 := min(y0+band, s.h)
		pg.Go(func() error {
			for y := y0; y < y1; y++ {
				row := buf.Pix[y*buf.Stride:]
				for x := 0; x < s.w; x++ {
					frag := Vec2{float64(x) + 0.5, float64(y) + 0.5}
					cell, local := cellOf(frag, fp.cell)
					cx := min(int(cell.X), cols-1)
					cy := min(int(cell.Y), rows-1)
					cs := s.cells[cy*cols+cx]
					c := cs.Pixel(glyphCoverage(local, cs.One, fp.cell)).RGBA()
					px := row[x*4 : x*4+4]
					px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
				}
			}
			return nil
		})
	}
	return pg.Wait()
}

// Release drops the program and closes the offscreen canvas so the UI side
// can reclaim it.
func (s *SoftwareSurface) Release() {
	if s.released {
		return
	}
	s.released = true
	s.program = nil
	s.cells = nil
	s.target.Close()
}
