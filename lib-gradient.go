package main

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// WatermarkEstimate is the median gradient of a corpus together with the
// per-image gradients it was computed from.
type WatermarkEstimate struct {
	Gradient GradientField
	GradX    []Field
	GradY    []Field
}

// Estimator computes the shared watermark gradient of an image corpus.
type Estimator struct {
	Diff       Differentiator
	KernelSize int
	Workers    int
}

// EstimateWatermark loads every image below root and estimates the watermark
// gradient as the per-pixel median of the image gradients.
func (e Estimator) EstimateWatermark(root string) (WatermarkEstimate, []LoadOutcome, error) {
	images, outcomes, err := LoadImages(root)
	if err != nil {
		return WatermarkEstimate{}, outcomes, err
	}

	est, err := e.EstimateFromImages(images)
	return est, outcomes, err
}

// EstimateFromImages is EstimateWatermark over already decoded images.
func (e Estimator) EstimateFromImages(images []LoadedImage) (WatermarkEstimate, error) {
	if len(images) == 0 {
		return WatermarkEstimate{}, ErrNoImages
	}

	first := images[0].Image
	for _, img := range images[1:] {
		if !img.Image.SameShape(first) {
			return WatermarkEstimate{}, fmt.Errorf("%s is %s, expected %s: %w",
				img.Path, img.Image.Shape(), first.Shape(), ErrShapeMismatch)
		}
	}

	perf := time.Now()
	log.Info().Int("images", len(images)).Msg("computing gradients")

	gradx := make([]Field, len(images))
	grady := make([]Field, len(images))

	var g errgroup.Group
	if e.Workers > 0 {
		g.SetLimit(e.Workers)
	}
	for i := range images {
		i := i
		g.Go(func() error {
			img := Normalize(images[i].Image)

			gx, err := e.Diff.Gradient(img, AxisX, e.KernelSize)
			if err != nil {
				return fmt.Errorf("%s: %w", images[i].Path, err)
			}
			gy, err := e.Diff.Gradient(img, AxisY, e.KernelSize)
			if err != nil {
				return fmt.Errorf("%s: %w", images[i].Path, err)
			}

			gradx[i], grady[i] = gx, gy
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WatermarkEstimate{}, err
	}

	log.Info().Msg("computing median gradients")
	median, err := MedianGradients(gradx, grady)
	if err != nil {
		return WatermarkEstimate{}, err
	}

	log.Debug().
		Int64("duration(ms)", time.Since(perf).Milliseconds()).
		Str("shape", first.Shape()).
		Msg("gradient estimate")

	return WatermarkEstimate{Gradient: median, GradX: gradx, GradY: grady}, nil
}

// MedianGradients combines per-image gradients into their per-sample median.
func MedianGradients(gradx, grady []Field) (GradientField, error) {
	if len(gradx) != len(grady) {
		return GradientField{}, fmt.Errorf("%d x gradients vs %d y gradients: %w", len(gradx), len(grady), ErrShapeMismatch)
	}

	mx, err := medianField(gradx)
	if err != nil {
		return GradientField{}, err
	}
	my, err := medianField(grady)
	if err != nil {
		return GradientField{}, err
	}

	return GradientField{X: mx, Y: my}, nil
}

func medianField(fields []Field) (Field, error) {
	if len(fields) == 0 {
		return Field{}, ErrNoImages
	}

	ref := fields[0]
	for i, f := range fields {
		if !f.SameShape(ref) {
			return Field{}, fmt.Errorf("gradient %d is %s, expected %s: %w", i, f.Shape(), ref.Shape(), ErrShapeMismatch)
		}
	}

	out := NewField(ref.Rows, ref.Cols, ref.Channels)
	samples := make(stats.Float64Data, len(fields))
	for i := range out.Data {
		for k, f := range fields {
			samples[k] = f.Data[i]
		}
		m, err := stats.Median(samples)
		if err != nil {
			return Field{}, err
		}
		out.Data[i] = m
	}

	return out, nil
}
