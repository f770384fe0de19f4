package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"ColoringBoard/internal/raster"
	"ColoringBoard/internal/shape"
	"ColoringBoard/internal/state"
	"ColoringBoard/internal/stroke"
)

// transparentWhite is the color of untouched doodle canvas.
var transparentWhite = color.NRGBA{R: 255, G: 255, B: 255}

// BeginLoad marks page as loading. Input is ignored until LoadPage or
// FailLoad.
func (s *Session) BeginLoad(page state.Page) {
	s.endStroke()
	s.page = page
	s.ready = false
	s.loading = true
	s.loadErr = nil
	s.changed()
}

// FailLoad records a failed page load. The session stays not ready.
func (s *Session) FailLoad(err error) {
	s.ready = false
	s.loading = false
	s.loadErr = err
	s.log.Warn("page load failed", "page", s.page.ID, "err", err)
	s.changed()
}

// LoadPage installs img as the line art of page: it is drawn centered and
// scaled onto an opaque white buffer so transparent art stays colorable.
// History restarts with the loaded page and the fill tool is selected.
func (s *Session) LoadPage(page state.Page, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		s.page = page
		s.FailLoad(fmt.Errorf("page %s: empty image", page.ID))
		return ErrNotReady
	}
	s.endStroke()
	buf := raster.NewBuffer(s.opts.PageWidth, s.opts.PageHeight)
	buf.Clear(raster.White.NRGBA(255))
	buf.DrawFitted(img, s.opts.FitRatio)

	s.page = page
	s.mode = PageMode
	s.shape = shape.Shape{}
	s.tool = FillTool
	s.install(buf, "load")
	s.log.Info("page loaded", "page", page.ID)
	s.touched()
	return nil
}

// LoadBlank starts a doodle on a transparent canvas over a new shape of the
// given kind. The pen is selected.
func (s *Session) LoadBlank(kind shape.Kind) {
	s.endStroke()
	buf := raster.NewBuffer(s.opts.DoodleWidth, s.opts.DoodleHeight)
	buf.Clear(transparentWhite)

	s.page = state.Page{ID: state.BlankPageID, Title: "Doodle"}
	s.mode = DoodleMode
	s.shape = shape.Generate(s.rng, buf.Width(), buf.Height(), kind)
	s.tool = PenTool
	s.install(buf, "blank")
	s.log.Info("doodle started", "shape", kind.String())
	s.touched()
}

func (s *Session) install(buf *raster.Buffer, label string) {
	s.setBuffer(buf)
	s.base = buf.Snapshot()
	s.hist.Reset(label, buf.Snapshot())
	s.ready = true
	s.loading = false
	s.loadErr = nil
}

// SetTool selects the active tool. A stroke in progress is finished first.
func (s *Session) SetTool(t Tool) {
	if t < FillTool || t > EraserTool {
		return
	}
	s.endStroke()
	s.tracker.Cancel()
	s.tool = t
	s.syncGestureMode()
	s.changed()
}

// Tool returns the active tool.
func (s *Session) Tool() Tool { return s.tool }

// SetColor sets the fill and stroke color from a hex string.
func (s *Session) SetColor(hex string) error {
	c, err := raster.ParseHex(hex)
	if err != nil {
		return err
	}
	s.color = c
	s.changed()
	return nil
}

// SetBrushSize sets the stroke size. Non-positive sizes are ignored.
func (s *Session) SetBrushSize(size float64) {
	if size <= 0 || math.IsNaN(size) {
		return
	}
	s.size = size
	s.changed()
}

func (s *Session) style() stroke.Style {
	return stroke.Style{Tool: s.tool.stroke(), Color: s.color, Size: s.size}
}

// Fill flood-fills the region around buffer pixel (x, y) with the current
// color. It reports whether any pixel changed; a fill that changes nothing
// records no history and plays no sound.
func (s *Session) Fill(x, y int) (bool, error) {
	if !s.ready {
		return false, ErrNotReady
	}
	if !s.buf.In(x, y) {
		return false, nil
	}
	n := s.engine.Fill(s.buf, x, y, s.color)
	if n == 0 {
		s.log.Debug("fill no-op", "x", x, "y", y)
		return false, nil
	}
	s.hist.Push("fill", s.buf.Snapshot())
	s.play("fill")
	s.log.Debug("fill", "x", x, "y", y, "pixels", n)
	s.touched()
	return true, nil
}

// BeginStroke starts a stroke with the current tool at buffer point p. With
// the fill tool selected it fills at p instead.
func (s *Session) BeginStroke(p stroke.Point) error {
	if !s.ready {
		return ErrNotReady
	}
	if s.tool == FillTool {
		_, err := s.Fill(int(math.Floor(p.X)), int(math.Floor(p.Y)))
		return err
	}
	s.endStroke()
	s.active = s.pen.Begin(s.buf, s.style(), p)
	s.touched()
	return nil
}

// MoveStroke extends the active stroke to buffer point p.
func (s *Session) MoveStroke(p stroke.Point) error {
	if !s.ready {
		return ErrNotReady
	}
	if s.active == nil {
		return nil
	}
	s.active.Move(p)
	s.touched()
	return nil
}

// EndStroke finishes the active stroke and records it in the history.
func (s *Session) EndStroke() error {
	if !s.ready {
		return ErrNotReady
	}
	s.endStroke()
	return nil
}

func (s *Session) endStroke() {
	if s.active == nil {
		return
	}
	st := s.active
	s.active = nil
	st.End()
	if !s.ready {
		return
	}
	s.hist.Push(st.Style().Tool.String(), s.buf.Snapshot())
	s.play("stroke")
	s.touched()
}

// Undo steps back one history entry. It reports false at the oldest entry.
func (s *Session) Undo() bool {
	if !s.ready {
		return false
	}
	s.endStroke()
	e, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.restore(e.Pix)
	return true
}

// Redo re-applies the next history entry. It reports false at the newest.
func (s *Session) Redo() bool {
	if !s.ready {
		return false
	}
	s.endStroke()
	e, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.restore(e.Pix)
	return true
}

func (s *Session) restore(pix []byte) {
	if err := s.buf.Restore(pix); err != nil {
		s.log.Error("restore history entry", "err", err)
		return
	}
	s.touched()
}

// Clear returns the buffer to the freshly loaded page or blank canvas as an
// undoable step. It reports false if there was nothing to clear.
func (s *Session) Clear() bool {
	if !s.ready {
		return false
	}
	s.endStroke()
	if bytes.Equal(s.buf.Pix(), s.base) {
		return false
	}
	if err := s.buf.Restore(s.base); err != nil {
		s.log.Error("clear", "err", err)
		return false
	}
	s.hist.Push("clear", s.buf.Snapshot())
	s.touched()
	return true
}

// NewShape replaces the doodle shape and starts over on an empty layer.
// Outside doodle mode it returns ErrNotReady.
func (s *Session) NewShape(kind shape.Kind) error {
	if !s.ready || s.mode != DoodleMode {
		return ErrNotReady
	}
	s.LoadBlank(kind)
	return nil
}

// RotateShape turns the doodle shape by 90 degrees.
func (s *Session) RotateShape() {
	if s.mode != DoodleMode {
		return
	}
	s.shape = s.shape.Rotate()
	s.touched()
}

// FlipShape mirrors the doodle shape horizontally.
func (s *Session) FlipShape() {
	if s.mode != DoodleMode {
		return
	}
	s.shape = s.shape.Flip()
	s.touched()
}
