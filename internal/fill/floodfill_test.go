package fill

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColoringBoard/internal/raster"
)

var red = raster.Color{R: 230, G: 20, B: 40}

func gray(v uint8) color.NRGBA { return color.NRGBA{R: v, G: v, B: v, A: 255} }

// ringBuffer draws a solid black ring (inner radius 15, outer 18) centered
// in a white 64x64 buffer.
func ringBuffer() *raster.Buffer {
	b := raster.NewBuffer(64, 64)
	b.Clear(raster.White.NRGBA(255))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if d := dist2(x, y); d >= 15*15 && d <= 18*18 {
				b.Set(x, y, raster.Black.NRGBA(255))
			}
		}
	}
	return b
}

func dist2(x, y int) int {
	dx, dy := x-32, y-32
	return dx*dx + dy*dy
}

func TestFillStaysInsideRing(t *testing.T) {
	b := ringBuffer()
	n := Fill(b, 32, 32, red, 50)
	require.Positive(t, n)

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			got := b.At(x, y)
			d := dist2(x, y)
			switch {
			case d < 15*15:
				require.Equal(t, red.NRGBA(255), got, "disk pixel %d,%d", x, y)
			case d <= 18*18:
				require.Equal(t, raster.Black.NRGBA(255), got, "ring pixel %d,%d", x, y)
			default:
				require.Equal(t, raster.White.NRGBA(255), got, "outside pixel %d,%d", x, y)
			}
		}
	}
}

func TestFillIsIdempotent(t *testing.T) {
	b := ringBuffer()
	Fill(b, 32, 32, red, 50)
	before := b.Snapshot()

	n := Fill(b, 32, 32, red, 50)
	assert.Zero(t, n)
	assert.True(t, bytes.Equal(before, b.Snapshot()))
}

func TestSeedAlreadyFillColorIsNoop(t *testing.T) {
	b := raster.NewBuffer(8, 8)
	b.Clear(color.NRGBA{R: 235, G: 25, B: 35, A: 255}) // within 10 of red
	before := b.Snapshot()

	assert.Zero(t, Fill(b, 4, 4, red, 50))
	assert.Equal(t, before, b.Snapshot())
}

func TestSeedOnOutlineIsNoop(t *testing.T) {
	b := ringBuffer()
	before := b.Snapshot()
	// (32, 15) is on the ring: distance 17.
	require.Equal(t, raster.Black.NRGBA(255), b.At(32, 15))

	assert.Zero(t, Fill(b, 32, 15, red, 50))
	assert.Equal(t, before, b.Snapshot())
}

func TestSeedOutsideBufferIsNoop(t *testing.T) {
	b := ringBuffer()
	assert.Zero(t, Fill(b, -1, 3, red, 50))
	assert.Zero(t, Fill(b, 64, 3, red, 50))
}

func TestToleranceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		seed     color.NRGBA
		neighbor color.NRGBA
		want     int
	}{
		{"gray at distance 50", gray(250), gray(200), 2},
		{"dark gray beyond widened tolerance", gray(250), gray(90), 1},
		{"mid gray inside widened tolerance", gray(250), gray(110), 2},
		{
			"colored seed uses base tolerance",
			color.NRGBA{R: 250, G: 200, B: 150, A: 255},
			color.NRGBA{R: 200, G: 150, B: 100, A: 255},
			2,
		},
		{
			"colored seed rejects distance 60",
			color.NRGBA{R: 250, G: 200, B: 150, A: 255},
			color.NRGBA{R: 190, G: 150, B: 100, A: 255},
			1,
		},
		{
			"colored seed does not widen toward gray",
			color.NRGBA{R: 250, G: 240, B: 200, A: 255},
			gray(110),
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := raster.NewBuffer(2, 1)
			b.Set(0, 0, tt.seed)
			b.Set(1, 0, tt.neighbor)

			assert.Equal(t, tt.want, Fill(b, 0, 0, red, 50))
			if tt.want == 1 {
				assert.Equal(t, tt.neighbor, b.At(1, 0))
			}
		})
	}
}

func TestSoftDarkOutlineStopsLightFill(t *testing.T) {
	b := raster.NewBuffer(5, 1)
	for x := 0; x < 5; x++ {
		b.Set(x, 0, gray(200))
	}
	b.Set(2, 0, gray(80))

	assert.Equal(t, 2, Fill(b, 0, 0, red, 50))
	assert.Equal(t, gray(80), b.At(2, 0))
	assert.Equal(t, gray(200), b.At(3, 0))
}

func TestDarkFilledRegionCanBeRefilled(t *testing.T) {
	b := ringBuffer()
	slate := raster.MustParseHex("#2F4F4F") // all channels below 90
	require.Positive(t, Fill(b, 32, 32, slate, 50))

	n := Fill(b, 32, 32, red, 50)
	assert.Positive(t, n)
	assert.Equal(t, red.NRGBA(255), b.At(32, 32))
	assert.Equal(t, red.NRGBA(255), b.At(32, 20))
	assert.Equal(t, raster.Black.NRGBA(255), b.At(32, 15))
	assert.Equal(t, raster.White.NRGBA(255), b.At(1, 1))
}

func TestFillWritesOpaquePixels(t *testing.T) {
	b := raster.NewBuffer(3, 3)
	b.Clear(color.NRGBA{R: 255, G: 255, B: 255, A: 0})

	assert.Equal(t, 9, Fill(b, 1, 1, red, 50))
	assert.Equal(t, uint8(255), b.At(2, 2).A)
}

func permutations(in []image.Point) [][]image.Point {
	if len(in) <= 1 {
		return [][]image.Point{append([]image.Point(nil), in...)}
	}
	var out [][]image.Point
	for i := range in {
		rest := make([]image.Point, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]image.Point{in[i]}, p...))
		}
	}
	return out
}

func TestNeighborOrderDoesNotChangeResult(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	src := raster.NewBuffer(48, 48)
	shades := []uint8{255, 240, 180, 120, 60, 0}
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			src.Set(x, y, gray(shades[rng.Intn(len(shades))]))
		}
	}
	src.Set(24, 24, gray(255))

	var want []byte
	perms := permutations(neighbors[:])
	require.Len(t, perms, 24)
	for _, p := range perms {
		e := New(DefaultOptions())
		copy(e.order[:], p)
		b := src.Clone()
		e.Fill(b, 24, 24, red)
		if want == nil {
			want = b.Snapshot()
			continue
		}
		require.Equal(t, want, b.Snapshot(), "order %v", p)
	}
}

func BenchmarkFillLargeRegion(b *testing.B) {
	src := raster.NewBuffer(1024, 1024)
	src.Clear(raster.White.NRGBA(255))
	for i := 0; i < b.N; i++ {
		buf := src.Clone()
		Fill(buf, 512, 512, red, 50)
	}
}
