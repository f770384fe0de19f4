package editor

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"ColoringBoard/internal/export"
)

// Composite returns what the user sees: the drawing buffer over the doodle
// shape over white.
func (s *Session) Composite() *image.NRGBA {
	w, h := s.buf.Width(), s.buf.Height()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	if s.mode == DoodleMode && !s.shape.Empty() {
		dc := gg.NewContext(w, h)
		defer dc.Close()
		dc.ClearWithColor(gg.White)
		if err := s.shape.Fill(dc, w, h); err != nil {
			s.log.Warn("draw shape", "err", err)
		}
		xdraw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, xdraw.Src)
	} else {
		xdraw.Draw(out, out.Bounds(), image.White, image.Point{}, xdraw.Src)
	}
	xdraw.Draw(out, out.Bounds(), s.buf.Image(), image.Point{}, xdraw.Over)
	return out
}

// FileName returns the suggested export name for the current page.
func (s *Session) FileName(now time.Time) string {
	return export.FileName(s.page.Slug(), s.mode == DoodleMode, now)
}

// ExportPNG writes the composite as PNG and returns the suggested file
// name.
func (s *Session) ExportPNG(w io.Writer) (string, error) {
	if !s.ready {
		return "", ErrNotReady
	}
	s.endStroke()
	if err := export.PNG(w, s.Composite()); err != nil {
		return "", err
	}
	name := s.FileName(time.Now())
	s.log.Info("exported", "file", name)
	return name, nil
}

// Print writes the composite as a one-page printable PDF and returns the
// suggested file name.
func (s *Session) Print(w io.Writer) (string, error) {
	if !s.ready {
		return "", ErrNotReady
	}
	s.endStroke()
	if err := export.PDF(w, s.Composite(), s.page.Title); err != nil {
		return "", fmt.Errorf("print %s: %w", s.page.ID, err)
	}
	return export.PDFName(s.page.Slug(), s.mode == DoodleMode, time.Now()), nil
}
