package shape

import (
	"math"
	"math/rand"
)

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func intBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo)
}

// Generate returns a new random shape of the given kind sized for a w by h
// canvas, with a random pastel color, rotation and flips.
func Generate(rng *rand.Rand, w, h int, kind Kind) Shape {
	var s Shape
	switch kind {
	case Geometric:
		s = geometric(rng, float64(w), float64(h))
	default:
		s = organic(rng, float64(w), float64(h))
	}
	s.Kind = kind
	s.Color = Pastel[rng.Intn(len(Pastel))]
	s.Rotation = rng.Float64() * 360
	s.ScaleX, s.ScaleY = 1, 1
	if rng.Float64() > 0.5 {
		s.ScaleX = -1
	}
	if rng.Float64() > 0.5 {
		s.ScaleY = -1
	}
	return s
}

// organic builds a lobed blob: anchors on a stretched, offset circle whose
// radius follows a sine wave with per-point jitter.
func organic(rng *rand.Rand, w, h float64) Shape {
	cx, cy := w/2, h/2
	base := math.Min(w, h) * 0.35
	n := intBetween(rng, 5, 12)
	step := 2 * math.Pi / float64(n)

	offX, offY := between(rng, -30, 30), between(rng, -30, 30)
	lobes := between(rng, 1, 4)
	stretchX, stretchY := between(rng, 0.7, 1.4), between(rng, 0.7, 1.4)

	pts := make([]Point, n)
	for i := range pts {
		a := float64(i) * step
		r := base * between(rng, 0.7, 1.3) * (0.8 + 0.3*math.Sin(a*lobes))
		pts[i] = Point{
			X: cx + offX + math.Cos(a)*r*stretchX,
			Y: cy + offY + math.Sin(a)*r*stretchY,
		}
	}
	return Shape{Curve: Basis, Points: pts}
}

func geometric(rng *rand.Rand, w, h float64) Shape {
	cx, cy := w/2, h/2
	base := math.Min(w, h) * 0.38

	switch style := rng.Float64(); {
	case style < 0.3:
		return star(rng, cx, cy, base)
	case style < 0.7:
		return blocky(rng, cx, cy, base)
	default:
		return polygon(rng, cx, cy, base)
	}
}

func star(rng *rand.Rand, cx, cy, base float64) Shape {
	spikes := intBetween(rng, 5, 12)
	inner := between(rng, 0.3, 0.65)
	pts := make([]Point, spikes*2)
	for i := range pts {
		r := base * inner
		if i%2 == 0 {
			r = base * between(rng, 0.9, 1.25)
		}
		a := math.Pi*float64(i)/float64(spikes) + between(rng, -0.05, 0.05)
		pts[i] = Point{cx + math.Cos(a)*r, cy + math.Sin(a)*r}
	}
	return Shape{Curve: Linear, Points: pts}
}

func blocky(rng *rand.Rand, cx, cy, base float64) Shape {
	steps := intBetween(rng, 5, 10)
	offX, offY := between(rng, -20, 20), between(rng, -20, 20)
	pts := make([]Point, steps)
	for i := range pts {
		a := float64(i) / float64(steps) * 2 * math.Pi
		r := base * between(rng, 0.4, 1.3)
		pts[i] = Point{cx + offX + math.Cos(a)*r, cy + offY + math.Sin(a)*r}
	}
	return Shape{Curve: Step, Points: pts}
}

func polygon(rng *rand.Rand, cx, cy, base float64) Shape {
	n := intBetween(rng, 3, 7)
	slice := 2 * math.Pi / float64(n)
	pts := make([]Point, n)
	a := 0.0
	for i := range pts {
		a += slice * between(rng, 0.6, 1.4)
		r := base * between(rng, 0.6, 1.4)
		pts[i] = Point{cx + math.Cos(a)*r, cy + math.Sin(a)*r}
	}
	return Shape{Curve: Linear, Points: pts}
}
