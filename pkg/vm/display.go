package vm

import (
	"image"
	"image/color"
	"sync"
)

// DefaultWidth and DefaultHeight are the PArIR pad dimensions.
const (
	DefaultWidth  = 36
	DefaultHeight = 36
)

// Display is the drawing surface behind the clear, write, writebox and
// read instructions. Coordinates outside the surface are ignored.
type Display interface {
	Width() int
	Height() int
	Clear(c color.RGBA)
	Set(x, y int, c color.RGBA)
	FillRect(x, y, w, h int, c color.RGBA)
	At(x, y int) color.RGBA
}

// Framebuffer is an in-memory Display safe for concurrent use. The VM
// draws into it while a window reads snapshots.
type Framebuffer struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// NewFramebuffer creates a black framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	fb.Clear(color.RGBA{A: 0xff})
	return fb
}

func (fb *Framebuffer) Width() int  { return fb.img.Rect.Dx() }
func (fb *Framebuffer) Height() int { return fb.img.Rect.Dy() }

func (fb *Framebuffer) Clear(c color.RGBA) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := 0; i < len(fb.img.Pix); i += 4 {
		fb.img.Pix[i+0] = c.R
		fb.img.Pix[i+1] = c.G
		fb.img.Pix[i+2] = c.B
		fb.img.Pix[i+3] = c.A
	}
}

func (fb *Framebuffer) Set(x, y int, c color.RGBA) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.img.SetRGBA(x, y, c)
}

// FillRect fills the rectangle clipped to the surface.
func (fb *Framebuffer) FillRect(x, y, w, h int, c color.RGBA) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	r := image.Rect(x, y, x+w, y+h).Intersect(fb.img.Rect)
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			fb.img.SetRGBA(px, py, c)
		}
	}
}

func (fb *Framebuffer) At(x, y int) color.RGBA {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.img.RGBAAt(x, y)
}

// Pixels returns a copy of the RGBA pixel data.
func (fb *Framebuffer) Pixels() []byte {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return append([]byte(nil), fb.img.Pix...)
}

// colour converts a 0xRRGGBB value to an opaque RGBA.
func colour(v float64) color.RGBA {
	u := uint32(int64(v)) & 0xffffff
	return color.RGBA{R: uint8(u >> 16), G: uint8(u >> 8), B: uint8(u), A: 0xff}
}

// colourValue converts an RGBA back to 0xRRGGBB.
func colourValue(c color.RGBA) float64 {
	return float64(uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}
