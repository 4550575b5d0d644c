package glyphwave

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Canvas is the UI-side drawing area of a hero. Control can be transferred
// once to an OffscreenCanvas owned by a render goroutine; after that the UI
// may only present frames the goroutine committed.
type Canvas struct {
	mu          sync.Mutex
	w, h        int
	transferred bool
	offscreen   *OffscreenCanvas

	up frontUploader
}

// NewCanvas creates a canvas of the given device-pixel size.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{w: max(w, 1), h: max(h, 1)}
}

// Size returns the canvas size in device pixels.
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

// Resize records a new size. An offscreen owner learns about it through an
// update message; the next committed frame carries the new size.
func (c *Canvas) Resize(w, h int) {
	c.mu.Lock()
	c.w, c.h = max(w, 1), max(h, 1)
	c.mu.Unlock()
}

// Transferred reports whether control currently belongs to an offscreen owner.
func (c *Canvas) Transferred() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transferred
}

// TransferToOffscreen hands control of the canvas to a render goroutine.
// It succeeds once; later calls return ErrCanvasTransferred.
func (c *Canvas) TransferToOffscreen() (*OffscreenCanvas, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transferred {
		return nil, ErrCanvasTransferred
	}
	c.transferred = true
	c.offscreen = &OffscreenCanvas{w: c.w, h: c.h}
	return c.offscreen, nil
}

// Reclaim takes control back from a closed offscreen owner so the main
// thread can draw again. It returns ErrCanvasBusy while the owner is open.
func (c *Canvas) Reclaim() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.transferred {
		return nil
	}
	if !c.offscreen.Closed() {
		return ErrCanvasBusy
	}
	c.transferred = false
	c.offscreen = nil
	return nil
}

// Frame returns a copy of the last committed frame, or nil if none exists.
func (c *Canvas) Frame() *image.RGBA {
	c.mu.Lock()
	o := c.offscreen
	c.mu.Unlock()
	if o == nil {
		return nil
	}
	return o.Snapshot()
}

// Present uploads the latest committed frame, if a new one exists, and draws
// it stretched over dst.
func (c *Canvas) Present(dst *ebiten.Image) {
	c.mu.Lock()
	o := c.offscreen
	c.mu.Unlock()
	if o == nil {
		return
	}
	c.up.present(dst, o)
}

// Dispose frees the upload image.
func (c *Canvas) Dispose() {
	c.up.dispose()
}

// frontUploader copies committed frames of an OffscreenCanvas into an
// ebiten image. It must be used from the game loop.
type frontUploader struct {
	image *ebiten.Image
}

func (u *frontUploader) present(dst *ebiten.Image, o *OffscreenCanvas) {
	o.withFront(func(front *image.RGBA, fresh bool) {
		b := front.Bounds()
		if u.image == nil || u.image.Bounds() != b {
			u.dispose()
			u.image = ebiten.NewImage(b.Dx(), b.Dy())
			fresh = true
		}
		if fresh {
			u.image.WritePixels(front.Pix)
		}
	})
	if u.image != nil {
		drawStretched(dst, u.image)
	}
}

func (u *frontUploader) dispose() {
	if u.image != nil {
		u.image.Deallocate()
		u.image = nil
	}
}

func drawStretched(dst, src *ebiten.Image) {
	sb, db := src.Bounds(), dst.Bounds()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Blend = ebiten.BlendCopy
	dst.DrawImage(src, &op)
}

// OffscreenCanvas is the render goroutine's side of a transferred canvas. It
// double-buffers: the owner renders into the back buffer without locking and
// Commit swaps it to the front under the lock the UI presents with.
type OffscreenCanvas struct {
	w, h int // initial size, before any frame is committed

	mu     sync.Mutex
	back   *image.RGBA
	front  *image.RGBA
	fresh  bool
	frames uint64
	closed bool
}

// NewOffscreenCanvas creates a detached offscreen canvas, used for trial
// surfaces and headless rendering.
func NewOffscreenCanvas(w, h int) *OffscreenCanvas {
	return &OffscreenCanvas{w: max(w, 1), h: max(h, 1)}
}

// Size returns the size the canvas had when control was transferred.
func (o *OffscreenCanvas) Size() (int, int) {
	return o.w, o.h
}

// BackBuffer returns a w×h buffer to render into, reusing the previous one
// when the size is unchanged. Only the owner goroutine may call it.
func (o *OffscreenCanvas) BackBuffer(w, h int) *image.RGBA {
	if o.back == nil || o.back.Rect.Dx() != w || o.back.Rect.Dy() != h {
		o.back = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return o.back
}

// Commit publishes the back buffer as the new front buffer.
func (o *OffscreenCanvas) Commit() {
	o.mu.Lock()
	o.back, o.front = o.front, o.back
	o.fresh = true
	o.frames++
	o.mu.Unlock()
}

// Frames returns the number of committed frames.
func (o *OffscreenCanvas) Frames() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frames
}

// Close marks the owner as done. The UI side may Reclaim afterwards.
func (o *OffscreenCanvas) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

// Closed reports whether Close was called.
func (o *OffscreenCanvas) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Snapshot copies the front buffer.
func (o *OffscreenCanvas) Snapshot() *image.RGBA {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.front == nil {
		return nil
	}
	cp := image.NewRGBA(o.front.Rect)
	copy(cp.Pix, o.front.Pix)
	return cp
}

// withFront runs fn on the front buffer under the lock. fresh is true the
// first time a committed frame is seen.
func (o *OffscreenCanvas) withFront(fn func(front *image.RGBA, fresh bool)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.front == nil {
		return
	}
	fn(o.front, o.fresh)
	o.fresh = false
}
