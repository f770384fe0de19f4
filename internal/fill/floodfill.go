// Package fill implements the tolerance-based flood fill used by the bucket
// tool.
//
// Pixels are compared against the seed color sampled once at the start of a
// fill, never against their already-filled neighbors, so a fill cannot creep
// across an anti-aliased edge one shade at a time.
//
// Anti-aliasing special case: line art is usually black on white, and the
// soft edge of a black line is a ramp of grays. When both the seed and the
// candidate pixel are gray, the comparison uses WideTolerance instead of
// Tolerance so the fill reaches into that ramp and leaves no white halo. The
// dark-pixel boundary test still stops it at the line itself. This is a
// deliberate heuristic, not a color model.
package fill

import (
	"image"

	"ColoringBoard/internal/logging"
	"ColoringBoard/internal/raster"
)

// Options holds the thresholds of the matching predicate. All values are
// per-channel distances on the 0-255 scale.
type Options struct {
	// Tolerance is the base channel distance for a pixel to match the seed.
	Tolerance int
	// WideTolerance replaces Tolerance when seed and pixel are both gray.
	WideTolerance int
	// GraySpread is the maximum pairwise channel difference (exclusive)
	// for a color to count as gray.
	GraySpread int
	// HardBoundary: a pixel with all channels below it is always an outline.
	HardBoundary int
	// SoftBoundary: a pixel with all channels below it is an outline unless
	// it matches the seed color.
	SoftBoundary int
	// SameColor: the fill is skipped when every seed channel is closer than
	// this to the fill color.
	SameColor int
}

// DefaultOptions returns the thresholds tuned for black line art.
func DefaultOptions() Options {
	return Options{
		Tolerance:     50,
		WideTolerance: 150,
		GraySpread:    20,
		HardBoundary:  40,
		SoftBoundary:  90,
		SameColor:     10,
	}
}

// neighbors is the default push order: left, right, up, down.
var neighbors = [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Engine performs flood fills with a fixed set of Options.
// The zero value is not usable; use New.
type Engine struct {
	opts  Options
	order [4]image.Point
}

// New returns an engine using opts.
func New(opts Options) *Engine {
	return &Engine{opts: opts, order: neighbors}
}

// Options returns the engine thresholds.
func (e *Engine) Options() Options { return e.opts }

// Fill flood fills buf from (seedX, seedY) with the base tolerance and the
// remaining thresholds from DefaultOptions. See Engine.Fill.
func Fill(buf *raster.Buffer, seedX, seedY int, c raster.Color, tolerance int) int {
	opts := DefaultOptions()
	opts.Tolerance = tolerance
	return New(opts).Fill(buf, seedX, seedY, c)
}

type rgb struct{ r, g, b int }

func (e *Engine) isGray(p rgb) bool {
	s := e.opts.GraySpread
	return abs(p.r-p.g) < s && abs(p.g-p.b) < s && abs(p.r-p.b) < s
}

func within(a, b rgb, tol int) bool {
	return abs(a.r-b.r) <= tol && abs(a.g-b.g) <= tol && abs(a.b-b.b) <= tol
}

func allBelow(p rgb, v int) bool {
	return p.r < v && p.g < v && p.b < v
}

// Fill recolors the 4-connected region around (seedX, seedY) that matches
// the seed color and writes c with full opacity. It mutates buf in place and
// returns the number of pixels written; 0 means nothing changed, either
// because the seed already has the fill color, the seed lies on an outline,
// or the seed is outside the buffer.
func (e *Engine) Fill(buf *raster.Buffer, seedX, seedY int, c raster.Color) int {
	log := logging.For("fill")
	if !buf.In(seedX, seedY) {
		log.Debug("seed outside buffer", "x", seedX, "y", seedY)
		return 0
	}

	w, h := buf.Width(), buf.Height()
	pix := buf.Pix()

	at := func(x, y int) rgb {
		i := (y*w + x) * 4
		return rgb{int(pix[i]), int(pix[i+1]), int(pix[i+2])}
	}

	seed := at(seedX, seedY)
	target := rgb{int(c.R), int(c.G), int(c.B)}

	same := e.opts.SameColor
	if abs(seed.r-target.r) < same && abs(seed.g-target.g) < same && abs(seed.b-target.b) < same {
		log.Debug("seed already has fill color", "x", seedX, "y", seedY)
		return 0
	}
	if allBelow(seed, e.opts.HardBoundary) {
		log.Debug("seed on outline", "x", seedX, "y", seedY)
		return 0
	}

	seedGray := e.isGray(seed)
	visited := newBitset(w * h)
	stack := make([]image.Point, 0, 1024)
	stack = append(stack, image.Pt(seedX, seedY))
	filled := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := p.Y*w + p.X
		if visited.get(idx) {
			continue
		}
		visited.set(idx)

		px := at(p.X, p.Y)
		if !e.fillable(seed, seedGray, px) {
			continue
		}

		i := idx * 4
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, 255
		filled++

		for _, d := range e.order {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if !visited.get(ny*w + nx) {
				stack = append(stack, image.Pt(nx, ny))
			}
		}
	}

	log.Debug("fill done", "x", seedX, "y", seedY, "pixels", filled, "color", c.Hex())
	return filled
}

// fillable reports whether px belongs to the region seeded by seed.
func (e *Engine) fillable(seed rgb, seedGray bool, px rgb) bool {
	tol := e.opts.Tolerance
	if seedGray && e.isGray(px) {
		tol = e.opts.WideTolerance
	}
	if !within(px, seed, tol) {
		return false
	}
	return !e.isBoundary(seed, px)
}

// isBoundary: very dark pixels always stop the fill; moderately dark pixels
// stop it unless they match the seed, which lets a dark region that was
// filled earlier be filled again when the user clicks inside it.
func (e *Engine) isBoundary(seed, px rgb) bool {
	if allBelow(px, e.opts.HardBoundary) {
		return true
	}
	if allBelow(px, e.opts.SoftBoundary) {
		return !within(px, seed, e.opts.Tolerance)
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
