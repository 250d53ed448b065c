package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shirtOnBackdrop is a dark square on an off-white backdrop.
func shirtOnBackdrop(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: 245, G: 244, B: 246, A: 255})
		}
	}
	for y := height / 4; y < height*3/4; y++ {
		for x := width / 4; x < width*3/4; x++ {
			img.Set(x, y, color.NRGBA{R: 20, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func TestWhitenBackgroundSmooth(t *testing.T) {
	out := WhitenBackgroundSmooth(shirtOnBackdrop(80, 80), 240, 2)

	corner := out.NRGBAAt(1, 1)
	assert.Equal(t, uint8(255), corner.R)
	assert.Equal(t, uint8(255), corner.G)

	center := out.NRGBAAt(40, 40)
	assert.InDelta(t, 20, int(center.R), 2)
	assert.InDelta(t, 90, int(center.B), 2)
}

func TestPrepareClothingPhoto(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, shirtOnBackdrop(2048, 1024)))

	out, mime, err := PrepareClothingPhoto(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, decoded.Bounds().Dx())
	assert.Equal(t, 512, decoded.Bounds().Dy())

	_, _, err = PrepareClothingPhoto([]byte("not an image"))
	assert.Error(t, err)
}
