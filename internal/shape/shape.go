// Package shape generates the random background outlines used by doodle
// mode and paints them with gg.
package shape

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"ColoringBoard/internal/raster"
)

// Kind selects the family of outline to generate.
type Kind int

const (
	Organic Kind = iota
	Geometric
)

func (k Kind) String() string {
	switch k {
	case Organic:
		return "organic"
	case Geometric:
		return "geometric"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts "organic" (or "blob") and "geometric" (or "geo").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "organic", "blob", "":
		return Organic, nil
	case "geometric", "geo":
		return Geometric, nil
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}

// Curve is the interpolation used between anchor points.
type Curve int

const (
	Basis  Curve = iota // closed uniform cubic B-spline
	Linear              // closed polyline
	Step                // closed horizontal/vertical steps
)

// Point is an anchor point in canvas coordinates.
type Point struct {
	X, Y float64
}

// Pastel is the palette shapes are colored from.
var Pastel = []raster.Color{
	raster.MustParseHex("#FDE047"),
	raster.MustParseHex("#FB923C"),
	raster.MustParseHex("#86EFAC"),
	raster.MustParseHex("#67E8F9"),
	raster.MustParseHex("#F472B6"),
	raster.MustParseHex("#A78BFA"),
	raster.MustParseHex("#FDA4AF"),
	raster.MustParseHex("#94A3B8"),
	raster.MustParseHex("#C084FC"),
	raster.MustParseHex("#2DD4BF"),
}

// Shape is an immutable closed outline with its presentation transform.
// Rotate and Flip return modified copies.
type Shape struct {
	Kind     Kind
	Curve    Curve
	Points   []Point
	Color    raster.Color
	Rotation float64 // degrees, clockwise
	ScaleX   float64 // 1 or -1
	ScaleY   float64 // 1 or -1
}

// Rotate returns s turned a further 90 degrees.
func (s Shape) Rotate() Shape {
	s.Rotation = math.Mod(s.Rotation+90, 360)
	return s
}

// Flip returns s mirrored horizontally.
func (s Shape) Flip() Shape {
	s.ScaleX = -s.ScaleX
	return s
}

// Empty reports whether the shape has nothing to draw.
func (s Shape) Empty() bool { return len(s.Points) < 3 }

// Fill paints the shape onto dc, rotating and flipping about the center of
// the w by h canvas.
func (s Shape) Fill(dc *gg.Context, w, h int) error {
	if s.Empty() {
		return nil
	}
	cx, cy := float64(w)/2, float64(h)/2
	sx, sy := s.ScaleX, s.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	dc.Push()
	defer dc.Pop()
	dc.Translate(cx, cy)
	dc.Rotate(s.Rotation * math.Pi / 180)
	dc.Scale(sx, sy)
	dc.Translate(-cx, -cy)

	s.path(dc)
	dc.SetRGBA(float64(s.Color.R)/255, float64(s.Color.G)/255, float64(s.Color.B)/255, 1)
	return dc.Fill()
}

func (s Shape) path(dc *gg.Context) {
	switch s.Curve {
	case Basis:
		basisClosed(dc, s.Points)
	case Step:
		stepClosed(dc, s.Points)
	default:
		linearClosed(dc, s.Points)
	}
	dc.ClosePath()
}

func linearClosed(dc *gg.Context, pts []Point) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
}

// basisClosed emits one cubic Bézier per anchor, converting each window of
// four consecutive B-spline control points.
func basisClosed(dc *gg.Context, pts []Point) {
	n := len(pts)
	at := func(i int) Point { return pts[(i%n+n)%n] }
	start := func(i int) Point {
		a, b, c := at(i), at(i+1), at(i+2)
		return Point{(a.X + 4*b.X + c.X) / 6, (a.Y + 4*b.Y + c.Y) / 6}
	}
	p := start(0)
	dc.MoveTo(p.X, p.Y)
	for i := 0; i < n; i++ {
		b, c := at(i+1), at(i+2)
		end := start(i + 1)
		dc.CubicTo(
			(2*b.X+c.X)/3, (2*b.Y+c.Y)/3,
			(b.X+2*c.X)/3, (b.Y+2*c.Y)/3,
			end.X, end.Y,
		)
	}
}

// stepClosed joins consecutive anchors with a horizontal run to the midpoint
// column, a vertical run and a second horizontal run.
func stepClosed(dc *gg.Context, pts []Point) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	n := len(pts)
	for i := 1; i <= n; i++ {
		prev, cur := pts[i-1], pts[i%n]
		mx := (prev.X + cur.X) / 2
		dc.LineTo(mx, prev.Y)
		dc.LineTo(mx, cur.Y)
		dc.LineTo(cur.X, cur.Y)
	}
}
