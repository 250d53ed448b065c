package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// longest side sent to the vision model
	analysisMaxSide = 1024

	backgroundThreshold uint8 = 240
	backgroundBlurSigma       = 4.0
)

// PrepareClothingPhoto downsizes a photo, softly whitens its light background
// and re-encodes it as JPEG.
func PrepareClothingPhoto(raw []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = imaging.Fit(img, analysisMaxSide, analysisMaxSide, imaging.Lanczos)
	cleaned := WhitenBackgroundSmooth(img, backgroundThreshold, backgroundBlurSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cleaned, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

func luminance(r, g, b uint32) float64 {
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// WhitenBackgroundSmooth composites the image over white through a blurred
// mask of its bright pixels, so the subject edge fades instead of cutting.
// Pixels at or above threshold count as background.
func WhitenBackgroundSmooth(img image.Image, threshold uint8, blurSigma float64) *image.NRGBA {
	bounds := img.Bounds()

	mask := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if luminance(r, g, b) >= float64(threshold) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	// imaging returns images anchored at the origin
	blurredMask := imaging.Blur(mask, blurSigma)

	result := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			m, _, _, _ := blurredMask.At(x, y).RGBA()

			keep := 1.0 - float64(m)/65535.0
			blend := func(v uint32) uint8 {
				return uint8((float64(v)*keep + 65535.0*(1.0-keep)) / 257)
			}
			result.SetNRGBA(x, y, color.NRGBA{R: blend(r), G: blend(g), B: blend(b), A: uint8(a / 257)})
		}
	}
	return result
}
