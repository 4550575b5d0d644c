package glyphwave

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// RenderPoster renders one w×h frame with the software kernel. It is the
// static image shown where animation is unavailable or disabled.
func RenderPoster(w, h int, u Uniforms) (*image.RGBA, error) {
	target := NewOffscreenCanvas(w, h)
	ec, err := newExecutionContext(ModeNone, NewSoftwareSurface(target), w, h)
	if err != nil {
		return nil, err
	}
	defer ec.Close()
	u.Resolution = Vec2{float64(w), float64(h)}
	if err := ec.Draw(u); err != nil {
		return nil, fmt.Errorf("glyphwave: render poster: %w", err)
	}
	return target.Snapshot(), nil
}

// PosterTime returns the render time at which scene sits in the middle of its
// hold at the given speed.
func PosterTime(scene SceneName, speed float64) (float64, error) {
	d, ok := SceneByName(scene)
	if !ok {
		return 0, fmt.Errorf("glyphwave: unknown scene %q", scene)
	}
	if speed <= 0 {
		return 0, fmt.Errorf("glyphwave: poster speed %v: must be positive", speed)
	}
	return (float64(d.Index)*CycleTime + HoldTime/2) / (speed * TimeScale), nil
}

// Thumbnail scales img so its longer edge is maxEdge, keeping the aspect.
func Thumbnail(img image.Image, maxEdge int) *image.RGBA {
	b := img.Bounds()
	scale := float64(maxEdge) / float64(max(b.Dx(), b.Dy()))
	w := max(1, int(float64(b.Dx())*scale+0.5))
	h := max(1, int(float64(b.Dy())*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WritePoster writes img as dir/<label>.png and, when thumbEdge > 0, a
// thumbnail as dir/<label>_thumb.png. It returns the written paths.
func WritePoster(dir, label string, img *image.RGBA, thumbEdge int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	safe := sanitizeLabel(label)
	path := filepath.Join(dir, safe+".png")
	if err := writePNG(path, img); err != nil {
		return nil, err
	}
	paths := []string{path}
	if thumbEdge > 0 {
		tp := filepath.Join(dir, safe+"_thumb.png")
		if err := writePNG(tp, Thumbnail(img, thumbEdge)); err != nil {
			return paths, err
		}
		paths = append(paths, tp)
	}
	return paths, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replaces everything else
// with '_', and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
