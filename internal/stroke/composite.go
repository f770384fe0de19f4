package stroke

import (
	"image"
	"math"

	"ColoringBoard/internal/raster"
)

// Coverage masks hold one byte per buffer pixel.

// restoreCovered copies base back into buf for every pixel inside r that
// either mask covers.
func restoreCovered(buf *raster.Buffer, base, glow, body []byte, r image.Rectangle) {
	pix := buf.Pix()
	w := buf.Width()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			j := y*w + x
			if glow[j] == 0 && body[j] == 0 {
				continue
			}
			copy(pix[j*4:j*4+4], base[j*4:j*4+4])
		}
	}
}

func clearRect(mask []byte, w int, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		clear(mask[y*w+r.Min.X : y*w+r.Max.X])
	}
}

// blendCoverage composites color over buf using cov as coverage,
// source-over with straight alpha.
func blendCoverage(buf *raster.Buffer, cov []byte, r image.Rectangle, c raster.Color, opacity float64) {
	pix := buf.Pix()
	w := buf.Width()
	sr, sg, sb := float64(c.R), float64(c.G), float64(c.B)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			j := y*w + x
			i := j * 4
			a := cov[j]
			if a == 0 {
				continue
			}
			sa := float64(a) / 255 * opacity
			da := float64(pix[i+3]) / 255
			oa := sa + da*(1-sa)
			if oa <= 0 {
				continue
			}
			k := da * (1 - sa)
			pix[i] = to8((sr*sa + float64(pix[i])*k) / oa)
			pix[i+1] = to8((sg*sa + float64(pix[i+1])*k) / oa)
			pix[i+2] = to8((sb*sa + float64(pix[i+2])*k) / oa)
			pix[i+3] = to8(oa * 255)
		}
	}
}

// eraseCoverage removes alpha in proportion to coverage. Pixels that end up
// fully transparent are reset to transparent white so a later fill treats
// them like untouched canvas.
func eraseCoverage(buf *raster.Buffer, cov []byte, r image.Rectangle, opacity float64) {
	pix := buf.Pix()
	w := buf.Width()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			j := y*w + x
			i := j * 4
			a := cov[j]
			if a == 0 {
				continue
			}
			keep := 1 - float64(a)/255*opacity
			na := to8(float64(pix[i+3]) * keep)
			if na == 0 {
				pix[i], pix[i+1], pix[i+2] = 255, 255, 255
			}
			pix[i+3] = na
		}
	}
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
