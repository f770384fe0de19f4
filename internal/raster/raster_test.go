package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#FF8C00", Color{255, 140, 0}},
		{"ff8c00", Color{255, 140, 0}},
		{"#fff", Color{255, 255, 255}},
		{" #000000 ", Color{0, 0, 0}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#12", "#GGGGGG", "#12345678"} {
		_, err := ParseHex(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, h := range Palette {
		c := MustParseHex(h)
		back, err := ParseHex(c.Hex())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestBufferSetAtOutOfRange(t *testing.T) {
	b := NewBuffer(4, 3)
	assert.Equal(t, 4, b.Width())
	assert.Equal(t, 3, b.Height())

	b.Set(-1, 0, color.NRGBA{R: 9, A: 255})
	b.Set(4, 0, color.NRGBA{R: 9, A: 255})
	for _, v := range b.Pix() {
		require.Zero(t, v)
	}

	b.Set(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, b.At(3, 2))
	assert.Equal(t, color.NRGBA{}, b.At(10, 10))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	b := NewBuffer(2, 2)
	b.Clear(White.NRGBA(255))
	snap := b.Snapshot()

	b.Set(0, 0, Black.NRGBA(255))
	assert.Equal(t, uint8(255), snap[0], "snapshot must not alias the live buffer")

	require.NoError(t, b.Restore(snap))
	assert.Equal(t, White.NRGBA(255), b.At(0, 0))

	err := b.Restore(make([]byte, 3))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestFitRectCentersAt85Percent(t *testing.T) {
	b := NewBuffer(1000, 1000)
	r := b.FitRect(200, 100, 0.85)
	assert.Equal(t, 850, r.Dx())
	assert.Equal(t, 425, r.Dy())
	assert.Equal(t, 75, r.Min.X)
	assert.InDelta(t, 1000-r.Max.Y, r.Min.Y, 1)
}

func TestDrawFittedLeavesMarginUntouched(t *testing.T) {
	b := NewBuffer(100, 100)
	b.Clear(White.NRGBA(255))

	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+3] = 255 // opaque black
	}
	r := b.DrawFitted(src, 0.85)

	assert.Equal(t, White.NRGBA(255), b.At(2, 2))
	assert.Equal(t, Black.NRGBA(255), b.At(50, 50))
	assert.True(t, r.Min.X > 0 && r.Max.X < 100)
}
