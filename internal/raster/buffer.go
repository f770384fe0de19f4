// Package raster owns the fixed-size RGBA pixel buffer that every editing
// tool draws into.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ErrSizeMismatch is returned by Restore when a snapshot does not belong to
// a buffer of the same dimensions.
var ErrSizeMismatch = errors.New("snapshot size mismatch")

// Buffer is a fixed width/height grid of straight-alpha RGBA pixels.
// Dimensions never change after NewBuffer; only pixel content does.
type Buffer struct {
	img *image.NRGBA
}

// NewBuffer allocates a transparent black buffer.
func NewBuffer(width, height int) *Buffer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

func (b *Buffer) Width() int  { return b.img.Rect.Dx() }
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Pix exposes the backing store, 4 bytes per pixel in row-major order.
// Callers doing bulk work operate on it directly.
func (b *Buffer) Pix() []byte { return b.img.Pix }

// Image returns the live image view of the buffer. It aliases the pixels.
func (b *Buffer) Image() *image.NRGBA { return b.img }

// In reports whether (x, y) is inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width() && y < b.Height()
}

// At returns the pixel at (x, y); out-of-range coordinates read as transparent.
func (b *Buffer) At(x, y int) color.NRGBA {
	if !b.In(x, y) {
		return color.NRGBA{}
	}
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set writes a pixel; out-of-range coordinates are ignored.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	if !b.In(x, y) {
		return
	}
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Clear sets every pixel to c.
func (b *Buffer) Clear(c color.NRGBA) {
	pix := b.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Snapshot returns a deep copy of the pixel data.
func (b *Buffer) Snapshot() []byte {
	out := make([]byte, len(b.img.Pix))
	copy(out, b.img.Pix)
	return out
}

// Restore copies a snapshot back into the buffer.
func (b *Buffer) Restore(snap []byte) error {
	if len(snap) != len(b.img.Pix) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(snap), len(b.img.Pix))
	}
	copy(b.img.Pix, snap)
	return nil
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.Width(), b.Height())
	copy(c.img.Pix, b.img.Pix)
	return c
}

// FitRect returns where an image of size (w, h) lands when scaled uniformly
// to at most ratio of the buffer and centered.
func (b *Buffer) FitRect(w, h int, ratio float64) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	bw, bh := float64(b.Width()), float64(b.Height())
	scale := min(bw/float64(w), bh/float64(h)) * ratio
	dw, dh := float64(w)*scale, float64(h)*scale
	x0 := int((bw - dw) / 2)
	y0 := int((bh - dh) / 2)
	return image.Rect(x0, y0, x0+int(dw+0.5), y0+int(dh+0.5))
}

// DrawFitted composites img over the buffer, centered and uniformly scaled
// to at most ratio of the buffer dimensions.
func (b *Buffer) DrawFitted(img image.Image, ratio float64) image.Rectangle {
	src := img.Bounds()
	dst := b.FitRect(src.Dx(), src.Dy(), ratio)
	if dst.Empty() {
		return dst
	}
	xdraw.CatmullRom.Scale(b.img, dst, img, src, xdraw.Over, nil)
	return dst
}
