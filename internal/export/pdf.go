// Package export writes finished pages as PNG images and printable PDFs.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
)

// PrintMargin is the page margin of printed PDFs, in millimetres.
const PrintMargin = 10.0

// PDF writes a one-page A4 document containing just img, centered and
// scaled to fit inside the margins. Landscape images get a landscape page.
func PDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("print: empty image")
	}
	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}

	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle(title, true)
	p.SetCreator("ColoringBoard", true)
	p.SetMargins(PrintMargin, PrintMargin, PrintMargin)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("print: encode: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("page", opts, &buf)

	pw, ph := p.GetPageSize()
	x, y, iw, ih := fit(float64(b.Dx()), float64(b.Dy()), pw-2*PrintMargin, ph-2*PrintMargin)
	p.ImageOptions("page", PrintMargin+x, PrintMargin+y, iw, ih, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}

// fit scales a w by h box uniformly into a boxW by boxH box and centers it.
func fit(w, h, boxW, boxH float64) (x, y, fw, fh float64) {
	k := math.Min(boxW/w, boxH/h)
	fw, fh = w*k, h*k
	return (boxW - fw) / 2, (boxH - fh) / 2, fw, fh
}
