// Package viewport maps pointer coordinates on the displayed canvas element
// to buffer pixels under zoom and pan, and turns raw pointer events into
// taps, drags, strokes and pinches.
package viewport

import "math"

// Point is a 2D coordinate in either screen or buffer space.
type Point struct {
	X, Y float64
}

// Mid returns the midpoint of p and q.
func Mid(p, q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Dist returns the distance between p and q.
func Dist(p, q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Default scale limits.
const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 5.0
)

// Transform is the buffer->screen mapping of the canvas element: the element
// is scaled by K about its origin and translated by (X, Y). Screen
// coordinates are relative to the element's untransformed top-left corner.
//
// The element may be displayed at a different size than the buffer
// resolution; ToBuffer rescales by bufferSize / elementSize after inverting
// the zoom and pan.
type Transform struct {
	K, X, Y float64

	minScale, maxScale float64

	elemW, elemH float64
	bufW, bufH   int
}

// New returns an identity transform for a buffer displayed in an element of
// the same size.
func New(bufW, bufH int) *Transform {
	return &Transform{
		K:        1,
		minScale: DefaultMinScale,
		maxScale: DefaultMaxScale,
		elemW:    float64(bufW),
		elemH:    float64(bufH),
		bufW:     bufW,
		bufH:     bufH,
	}
}

// SetLimits changes the scale range and re-clamps the current scale.
func (t *Transform) SetLimits(minScale, maxScale float64) {
	if minScale <= 0 || maxScale < minScale {
		return
	}
	t.minScale, t.maxScale = minScale, maxScale
	t.K = t.clamp(t.K)
}

// Limits returns the scale range.
func (t *Transform) Limits() (minScale, maxScale float64) { return t.minScale, t.maxScale }

// SetElementSize records the displayed (untransformed) size of the canvas
// element.
func (t *Transform) SetElementSize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	t.elemW, t.elemH = w, h
}

// ElementSize returns the displayed size of the canvas element.
func (t *Transform) ElementSize() (w, h float64) { return t.elemW, t.elemH }

func (t *Transform) ratio() (rx, ry float64) {
	return float64(t.bufW) / t.elemW, float64(t.bufH) / t.elemH
}

// ToBuffer converts a screen point to buffer space.
func (t *Transform) ToBuffer(p Point) Point {
	rx, ry := t.ratio()
	return Point{
		X: (p.X - t.X) / t.K * rx,
		Y: (p.Y - t.Y) / t.K * ry,
	}
}

// ToScreen converts a buffer point to screen space. It is the inverse of
// ToBuffer.
func (t *Transform) ToScreen(p Point) Point {
	rx, ry := t.ratio()
	return Point{
		X: p.X/rx*t.K + t.X,
		Y: p.Y/ry*t.K + t.Y,
	}
}

// BufferPixel returns the buffer pixel under a screen point and whether it
// lies inside the buffer.
func (t *Transform) BufferPixel(p Point) (x, y int, ok bool) {
	b := t.ToBuffer(p)
	x, y = int(math.Floor(b.X)), int(math.Floor(b.Y))
	ok = x >= 0 && y >= 0 && x < t.bufW && y < t.bufH
	return x, y, ok
}

// Pan moves the content by a screen-space delta.
func (t *Transform) Pan(dx, dy float64) {
	t.X += dx
	t.Y += dy
}

// SetScale sets the scale, clamped to the limits, keeping the translation.
func (t *Transform) SetScale(k float64) { t.K = t.clamp(k) }

// ZoomAt multiplies the scale by factor keeping the screen point anchor
// fixed on the same content.
func (t *Transform) ZoomAt(factor float64, anchor Point) {
	t.ScaleAbout(t.K*factor, anchor, anchor)
}

// ScaleAbout sets the scale to k (clamped) and translates so that the
// content that was under from ends up under to.
func (t *Transform) ScaleAbout(k float64, from, to Point) {
	lx := (from.X - t.X) / t.K
	ly := (from.Y - t.Y) / t.K
	t.K = t.clamp(k)
	t.X = to.X - lx*t.K
	t.Y = to.Y - ly*t.K
}

// Reset returns to the identity transform.
func (t *Transform) Reset() {
	t.K, t.X, t.Y = 1, 0, 0
}

func (t *Transform) clamp(k float64) float64 {
	if math.IsNaN(k) || k < t.minScale {
		return t.minScale
	}
	if k > t.maxScale {
		return t.maxScale
	}
	return k
}
