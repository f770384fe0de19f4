package shape

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColoringBoard/internal/raster"
)

func pixel(dc *gg.Context, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(dc.Image().At(x, y)).(color.NRGBA)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a := Generate(rand.New(rand.NewSource(9)), 800, 600, Organic)
	b := Generate(rand.New(rand.NewSource(9)), 800, 600, Organic)
	assert.Equal(t, a, b)
}

func TestGenerateOrganic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		s := Generate(rng, 800, 600, Organic)
		require.Equal(t, Basis, s.Curve)
		require.GreaterOrEqual(t, len(s.Points), 5)
		require.LessOrEqual(t, len(s.Points), 11)
		require.Contains(t, Pastel, s.Color)
		require.Contains(t, []float64{-1, 1}, s.ScaleX)
		require.Contains(t, []float64{-1, 1}, s.ScaleY)
		require.GreaterOrEqual(t, s.Rotation, 0.0)
		require.Less(t, s.Rotation, 360.0)
	}
}

func TestGenerateGeometricCoversAllStyles(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	seen := map[Curve]bool{}
	for i := 0; i < 200; i++ {
		s := Generate(rng, 800, 600, Geometric)
		require.False(t, s.Empty())
		seen[s.Curve] = true
	}
	assert.True(t, seen[Linear])
	assert.True(t, seen[Step])
	assert.False(t, seen[Basis])
}

func TestRotateAndFlipReturnCopies(t *testing.T) {
	s := Shape{Points: []Point{{0, 0}, {1, 0}, {0, 1}}, Rotation: 300, ScaleX: 1, ScaleY: 1}
	r := s.Rotate()
	assert.InDelta(t, 30.0, r.Rotation, 1e-9)
	assert.InDelta(t, 300.0, s.Rotation, 1e-9)

	f := s.Flip()
	assert.Equal(t, -1.0, f.ScaleX)
	assert.Equal(t, 1.0, s.ScaleX)
	assert.Equal(t, 1.0, f.Flip().ScaleX)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("geo")
	require.NoError(t, err)
	assert.Equal(t, Geometric, k)
	k, err = ParseKind("Organic")
	require.NoError(t, err)
	assert.Equal(t, Organic, k)
	_, err = ParseKind("hexagon")
	assert.Error(t, err)
}

func TestFillPaintsAboutCenter(t *testing.T) {
	red := raster.Color{R: 255}
	// Triangle in the left half of a 200x200 canvas.
	tri := Shape{
		Curve:  Linear,
		Points: []Point{{20, 40}, {90, 100}, {20, 160}},
		Color:  red,
		ScaleX: 1, ScaleY: 1,
	}

	dc := gg.NewContext(200, 200)
	dc.ClearWithColor(gg.Hex("#FFFFFF"))
	require.NoError(t, tri.Fill(dc, 200, 200))
	assert.Equal(t, red.NRGBA(255), pixel(dc, 40, 100))
	assert.Equal(t, raster.White.NRGBA(255), pixel(dc, 160, 100))

	dc = gg.NewContext(200, 200)
	dc.ClearWithColor(gg.Hex("#FFFFFF"))
	require.NoError(t, tri.Flip().Fill(dc, 200, 200))
	assert.Equal(t, raster.White.NRGBA(255), pixel(dc, 40, 100))
	assert.Equal(t, red.NRGBA(255), pixel(dc, 160, 100))
}

func TestFillCurves(t *testing.T) {
	square := []Point{{60, 60}, {140, 60}, {140, 140}, {60, 140}}
	for _, c := range []Curve{Basis, Linear, Step} {
		dc := gg.NewContext(200, 200)
		dc.ClearWithColor(gg.Hex("#FFFFFF"))
		s := Shape{Curve: c, Points: square, Color: raster.Black, ScaleX: 1, ScaleY: 1}
		require.NoError(t, s.Fill(dc, 200, 200))
		assert.Equal(t, raster.Black.NRGBA(255), pixel(dc, 100, 100), "curve %d", c)
		assert.Equal(t, raster.White.NRGBA(255), pixel(dc, 5, 5), "curve %d", c)
	}
}
