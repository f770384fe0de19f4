package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"time"
)

// PNG encodes img with best compression.
func PNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	return nil
}

// FileName returns the download name for a page: "<slug>-colored.png" for
// catalog pages and "doodle-<unix seconds>.png" for the blank canvas.
func FileName(slug string, blank bool, now time.Time) string {
	if blank || slug == "" {
		return fmt.Sprintf("doodle-%d.png", now.Unix())
	}
	return slug + "-colored.png"
}

// PDFName is FileName with a .pdf extension.
func PDFName(slug string, blank bool, now time.Time) string {
	name := FileName(slug, blank, now)
	return name[:len(name)-len(".png")] + ".pdf"
}
