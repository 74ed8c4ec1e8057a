package main

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
)

// ThresholdMask normalizes f and sets every sample >= threshold to 1 and
// every other sample to 0.
func ThresholdMask(f Field, threshold float64) Field {
	out := Normalize(f)
	for i, v := range out.Data {
		if v >= threshold {
			out.Data[i] = 1
		} else {
			out.Data[i] = 0
		}
	}
	return out
}

// CropWatermark thresholds the normalized gradient magnitude of g, finds the
// bounding box of the resulting mask, grows it by boundarySize on every side
// (clipped to the field) and returns g cropped to that box.
func CropWatermark(g GradientField, threshold float64, boundarySize int) (GradientField, image.Rectangle, error) {
	if boundarySize < 0 {
		return GradientField{}, image.Rectangle{}, fmt.Errorf("boundary size %d: %w", boundarySize, ErrInvalidArgument)
	}

	mag, err := g.Magnitude()
	if err != nil {
		return GradientField{}, image.Rectangle{}, err
	}
	mask := ThresholdMask(Normalize(mag).ChannelMean(), threshold)

	box, ok := maskBounds(mask)
	if !ok {
		return GradientField{}, image.Rectangle{}, fmt.Errorf("no gradient magnitude at or above %g: %w", threshold, ErrEmptyMask)
	}

	box = image.Rect(
		box.Min.X-boundarySize, box.Min.Y-boundarySize,
		box.Max.X+boundarySize, box.Max.Y+boundarySize,
	).Intersect(mask.Bounds())

	log.Debug().
		Float64("threshold", threshold).
		Str("box", box.String()).
		Msg("watermark crop")

	return g.Crop(box), box, nil
}

// maskBounds returns the smallest rectangle holding every sample equal to 1.
func maskBounds(mask Field) (image.Rectangle, bool) {
	box := image.Rectangle{}
	found := false
	for r := 0; r < mask.Rows; r++ {
		for c := 0; c < mask.Cols; c++ {
			if mask.At(r, c, 0) != 1 {
				continue
			}
			px := image.Rect(c, r, c+1, r+1)
			if !found {
				box, found = px, true
			} else {
				box = box.Union(px)
			}
		}
	}
	return box, found
}
