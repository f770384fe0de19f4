package stroke

import (
	"image"
	"math"
	"math/rand"

	"github.com/gogpu/gg"

	"ColoringBoard/internal/logging"
	"ColoringBoard/internal/raster"
)

// Point is a position in buffer space.
type Point struct {
	X, Y float64
}

func mid(a, b Point) Point { return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }

// Renderer rasterizes strokes. Coverage is computed by gg into a scratch
// pixmap the size of the target buffer. Line tools keep the coverage of the
// whole stroke in per-stroke masks, taking the maximum where segments
// overlap, and recomposite the dirty rectangle from the pixels the buffer
// had when the stroke began. A translucent stroke therefore keeps its
// opacity however densely it is sampled.
//
// A Renderer is not safe for concurrent use, and only one stroke per
// renderer may be in progress at a time.
type Renderer struct {
	rng *rand.Rand
	pm  *gg.Pixmap
	dc  *gg.Context

	base []byte // buffer pixels at Begin
	glow []byte // one coverage byte per pixel
	body []byte
}

// NewRenderer returns a renderer whose spray pattern is driven by seed.
func NewRenderer(seed int64) *Renderer {
	return &Renderer{rng: rand.New(rand.NewSource(seed))}
}

func (r *Renderer) ensure(w, h int) {
	if r.pm != nil && r.pm.Width() == w && r.pm.Height() == h {
		return
	}
	if r.dc != nil {
		_ = r.dc.Close()
	}
	r.pm = gg.NewPixmap(w, h)
	r.dc = gg.NewContext(w, h, gg.WithPixmap(r.pm))
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	r.glow = make([]byte, w*h)
	r.body = make([]byte, w*h)
}

// Render draws a complete stroke through pts.
func (r *Renderer) Render(buf *raster.Buffer, style Style, pts []Point) {
	if len(pts) == 0 {
		return
	}
	s := r.Begin(buf, style, pts[0])
	for _, p := range pts[1:] {
		s.Move(p)
	}
	s.End()
}

// Stroke is a stroke being drawn incrementally.
type Stroke struct {
	r     *Renderer
	buf   *raster.Buffer
	style Style
	pts   []Point
	done  bool
}

// Begin starts a stroke at p. The first point is always visible: line tools
// stamp a dot of their width and the spray tool sprays once.
func (r *Renderer) Begin(buf *raster.Buffer, style Style, p Point) *Stroke {
	s := &Stroke{r: r, buf: buf, style: style, pts: []Point{p}}
	if style.Tool == Spray {
		r.spray(buf, style, p)
		return s
	}
	r.ensure(buf.Width(), buf.Height())
	r.base = append(r.base[:0], buf.Pix()...)
	clear(r.glow)
	clear(r.body)

	radius := max(style.glowWidth(), style.Width()) / 2
	s.layers(boundsOf(radius, p), func(dc *gg.Context, width float64) {
		dc.DrawCircle(p.X, p.Y, width/2)
		_ = dc.Fill()
	})
	return s
}

// Style returns the stroke style.
func (s *Stroke) Style() Style { return s.style }

// Points returns the recorded pointer positions.
func (s *Stroke) Points() []Point { return s.pts }

// Move extends the stroke to p. Line tools draw a quadratic curve from the
// midpoint of the previous two samples through the previous sample to the
// midpoint of the newest pair, which smooths out sampling jitter.
func (s *Stroke) Move(p Point) {
	if s.done {
		return
	}
	s.pts = append(s.pts, p)
	if s.style.Tool == Spray {
		s.r.spray(s.buf, s.style, p)
		return
	}

	n := len(s.pts)
	if n == 2 {
		a, b := s.pts[0], mid(s.pts[0], p)
		s.line(a, b)
		return
	}
	prev, cur := s.pts[n-3], s.pts[n-2]
	from, to := mid(prev, cur), mid(cur, p)
	s.layers(boundsOf(s.style.glowWidth()/2+s.style.Width()/2, from, cur, to),
		func(dc *gg.Context, width float64) {
			dc.SetLineWidth(width)
			dc.MoveTo(from.X, from.Y)
			dc.QuadraticTo(cur.X, cur.Y, to.X, to.Y)
			_ = dc.Stroke()
		})
}

// End finishes the stroke with a straight segment to the last sample.
func (s *Stroke) End() {
	if s.done {
		return
	}
	s.done = true
	n := len(s.pts)
	if s.style.Tool == Spray || n < 2 {
		return
	}
	s.line(mid(s.pts[n-2], s.pts[n-1]), s.pts[n-1])
}

func (s *Stroke) line(a, b Point) {
	s.layers(boundsOf(s.style.glowWidth()/2+s.style.Width()/2, a, b),
		func(dc *gg.Context, width float64) {
			dc.SetLineWidth(width)
			dc.MoveTo(a.X, a.Y)
			dc.LineTo(b.X, b.Y)
			_ = dc.Stroke()
		})
}

// layers adds the glow halo, if the tool has one, and the body to the
// stroke masks and recomposites bounds.
func (s *Stroke) layers(bounds image.Rectangle, draw func(dc *gg.Context, width float64)) {
	r, buf, style := s.r, s.buf, s.style
	bounds = bounds.Intersect(image.Rect(0, 0, buf.Width(), buf.Height()))
	if gw := style.glowWidth(); gw > 0 {
		r.cover(r.glow, bounds, func(dc *gg.Context) { draw(dc, gw) })
	}
	r.cover(r.body, bounds, func(dc *gg.Context) { draw(dc, style.Width()) })
	if bounds.Empty() {
		logging.For("stroke").Debug("segment outside buffer", "tool", style.Tool.String())
		return
	}

	p := style.profile()
	restoreCovered(buf, r.base, r.glow, r.body, bounds)
	if style.Tool == Eraser {
		eraseCoverage(buf, r.body, bounds, p.opacity)
		return
	}
	if p.glowMul > 0 {
		blendCoverage(buf, r.glow, bounds, style.Color, p.glowOpacity)
	}
	blendCoverage(buf, r.body, bounds, style.Color, p.opacity)
}

// spray scatters dots uniformly over a disk around p. Each burst blends on
// top of the previous ones so paint builds up where the pointer lingers.
func (r *Renderer) spray(buf *raster.Buffer, style Style, p Point) {
	r.ensure(buf.Width(), buf.Height())
	radius := style.sprayRadius()
	dots := style.sprayDots()
	bounds := boundsOf(radius+sprayDotRadius, p).Intersect(image.Rect(0, 0, buf.Width(), buf.Height()))
	clearRect(r.body, buf.Width(), bounds)
	r.cover(r.body, bounds, func(dc *gg.Context) {
		for i := 0; i < dots; i++ {
			a := r.rng.Float64() * 2 * math.Pi
			d := math.Sqrt(r.rng.Float64()) * radius
			dc.DrawCircle(p.X+math.Cos(a)*d, p.Y+math.Sin(a)*d, sprayDotRadius)
		}
		_ = dc.Fill()
	})
	if bounds.Empty() {
		logging.For("stroke").Debug("spray outside buffer")
		return
	}
	blendCoverage(buf, r.body, bounds, style.Color, style.profile().opacity)
}

// cover rasterizes the shape built by draw and raises mask to its coverage
// within bounds. The scratch pixmap is left clear.
func (r *Renderer) cover(mask []byte, bounds image.Rectangle, draw func(dc *gg.Context)) {
	r.dc.SetRGBA(1, 1, 1, 1)
	draw(r.dc)
	r.dc.ClearPath()

	data := r.pm.Data()
	w := r.pm.Width()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			j := y*w + x
			if a := data[j*4+3]; a > mask[j] {
				mask[j] = a
			}
		}
	}
	clear(data)
}

// boundsOf returns the pixel rectangle covering pts grown by pad plus an
// anti-aliasing margin.
func boundsOf(pad float64, pts ...Point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	pad += 2
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad))+1, int(math.Ceil(maxY+pad))+1,
	)
}
