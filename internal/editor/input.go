package editor

import (
	"math"

	"ColoringBoard/internal/stroke"
	"ColoringBoard/internal/viewport"
)

// WheelStep is the zoom factor of one wheel notch.
const WheelStep = 1.1

// gestures routes the tracker's interpreted gestures to the session.
type gestures struct{ s *Session }

func (g gestures) Tap(p viewport.Point) {
	x, y, ok := g.s.view.BufferPixel(p)
	if !ok {
		return
	}
	if _, err := g.s.Fill(x, y); err != nil {
		g.s.log.Debug("tap ignored", "err", err)
	}
}

func (g gestures) StrokeBegin(p viewport.Point) {
	b := g.s.view.ToBuffer(p)
	_ = g.s.BeginStroke(stroke.Point{X: b.X, Y: b.Y})
}

func (g gestures) StrokeMove(p viewport.Point) {
	b := g.s.view.ToBuffer(p)
	_ = g.s.MoveStroke(stroke.Point{X: b.X, Y: b.Y})
}

func (g gestures) StrokeEnd() { g.s.endStroke() }

func (g gestures) ViewChanged() { g.s.changed() }

// PointerDown handles a mouse button or touch press at a screen position
// relative to the canvas element. Pointer ids distinguish touches.
func (s *Session) PointerDown(id int, x, y float64) {
	if !s.ready {
		return
	}
	s.tracker.Down(id, viewport.Point{X: x, Y: y})
	s.changed()
}

// PointerMove handles pointer motion.
func (s *Session) PointerMove(id int, x, y float64) {
	if !s.ready {
		return
	}
	s.tracker.Move(id, viewport.Point{X: x, Y: y})
}

// PointerUp handles a release.
func (s *Session) PointerUp(id int, x, y float64) {
	if !s.ready {
		return
	}
	s.tracker.Up(id, viewport.Point{X: x, Y: y})
	s.changed()
}

// PointerCancel aborts the current gesture.
func (s *Session) PointerCancel() {
	s.tracker.Cancel()
	s.changed()
}

// Wheel zooms about screen point (x, y) by notches wheel steps; positive
// values zoom in.
func (s *Session) Wheel(notches, x, y float64) {
	if !s.ready || notches == 0 || math.IsNaN(notches) {
		return
	}
	s.view.ZoomAt(math.Pow(WheelStep, notches), viewport.Point{X: x, Y: y})
	s.changed()
}

// Resize records the displayed size of the canvas element.
func (s *Session) Resize(w, h float64) {
	s.view.SetElementSize(w, h)
	s.changed()
}

// ResetView returns to the unzoomed, unpanned view.
func (s *Session) ResetView() {
	s.view.Reset()
	s.changed()
}
