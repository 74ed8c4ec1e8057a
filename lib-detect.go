package main

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/rs/zerolog/log"
)

// DetectionResult is the best match of a watermark in a target image.
// Size.X is the match width and Size.Y its height.
type DetectionResult struct {
	Annotated Field
	TopLeft   image.Point
	Size      image.Point
	Score     float64
}

// Locator finds a cropped watermark in an image by correlating the image's
// edge map with the watermark gradient magnitude, a cheap stand-in for
// chamfer matching. ThreshLow and ThreshHigh are passed to the edge detector
// untouched.
type Locator struct {
	Edges      EdgeDetector
	ThreshLow  float64
	ThreshHigh float64
	Color      color.RGBA
	Thickness  int
}

// Locate returns the single best match for (gx, gy) in img. The maximum
// response is always reported, however weak.
func (l Locator) Locate(img Field, g GradientField) (DetectionResult, error) {
	if l.ThreshLow >= l.ThreshHigh {
		return DetectionResult{}, fmt.Errorf("edge thresholds low %g >= high %g: %w", l.ThreshLow, l.ThreshHigh, ErrInvalidArgument)
	}

	mag, err := g.Magnitude()
	if err != nil {
		return DetectionResult{}, err
	}
	wm := mag.ChannelMean()
	if wm.Rows > img.Rows || wm.Cols > img.Cols {
		return DetectionResult{}, fmt.Errorf("watermark %s larger than image %s: %w", wm.Shape(), img.Shape(), ErrShapeMismatch)
	}

	perf := time.Now()
	edges, err := l.Edges.EdgeMap(img, l.ThreshLow, l.ThreshHigh)
	if err != nil {
		return DetectionResult{}, err
	}
	if edges.Rows != img.Rows || edges.Cols != img.Cols {
		return DetectionResult{}, fmt.Errorf("edge map %s vs image %s: %w", edges.Shape(), img.Shape(), ErrShapeMismatch)
	}
	if edges.Channels != 1 {
		edges = edges.ChannelMean()
	}

	response, err := Correlate(edges, wm)
	if err != nil {
		return DetectionResult{}, err
	}

	// the response peaks where the kernel center sits
	peak, score, err := ArgMax(response)
	if err != nil {
		return DetectionResult{}, err
	}
	topLeft := image.Pt(peak.X-wm.Cols/2, peak.Y-wm.Rows/2)
	box := image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(wm.Cols, wm.Rows))}

	thickness := l.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	annotated, err := DrawRectangle(img, box, l.Color, thickness)
	if err != nil {
		return DetectionResult{}, err
	}

	log.Debug().
		Int64("duration(ms)", time.Since(perf).Milliseconds()).
		Str("peak", peak.String()).
		Float64("score", score).
		Msg("watermark location")

	return DetectionResult{
		Annotated: annotated,
		TopLeft:   topLeft,
		Size:      image.Pt(wm.Cols, wm.Rows),
		Score:     score,
	}, nil
}
