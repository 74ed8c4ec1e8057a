package main

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Axis selects the direction of a derivative.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// Differentiator computes a same-shaped directional derivative of f.
type Differentiator interface {
	Gradient(f Field, axis Axis, ksize int) (Field, error)
}

// EdgeDetector computes a single channel binary edge map of img using
// hysteresis thresholds low < high.
type EdgeDetector interface {
	EdgeMap(img Field, low, high float64) (Field, error)
}

// matType builds the OpenCV type for a depth and channel count (CV_MAKETYPE).
func matType(depth gocv.MatType, channels int) gocv.MatType {
	return depth + gocv.MatType((channels-1)<<3)
}

// MatFromField copies f into a new CV_64F Mat. The caller owns the Mat.
func MatFromField(f Field) (gocv.Mat, error) {
	if f.Empty() {
		return gocv.NewMat(), fmt.Errorf("mat from empty field: %w", ErrInvalidArgument)
	}

	m := gocv.NewMatWithSize(f.Rows, f.Cols, matType(gocv.MatTypeCV64F, f.Channels))
	data, err := m.DataPtrFloat64()
	if err != nil {
		m.Close()
		return gocv.NewMat(), err
	}
	copy(data, f.Data)

	return m, nil
}

// FieldFromMat converts any Mat into a float64 Field. m is not modified.
func FieldFromMat(m gocv.Mat) (Field, error) {
	if m.Empty() {
		return Field{}, fmt.Errorf("field from empty mat: %w", ErrInvalidArgument)
	}

	// Regions are not continuous, and DataPtr requires a continuous buffer
	f64 := gocv.NewMat()
	defer f64.Close()
	m.ConvertTo(&f64, matType(gocv.MatTypeCV64F, m.Channels()))
	src := &f64
	if !f64.IsContinuous() {
		c := f64.Clone()
		defer c.Close()
		src = &c
	}

	data, err := src.DataPtrFloat64()
	if err != nil {
		return Field{}, err
	}

	f := NewField(src.Rows(), src.Cols(), src.Channels())
	copy(f.Data, data)

	return f, nil
}

// SobelDifferentiator is the gocv Sobel operator producing CV_64F output.
type SobelDifferentiator struct{}

func (SobelDifferentiator) Gradient(f Field, axis Axis, ksize int) (Field, error) {
	if ksize <= 0 || ksize%2 == 0 || ksize > 31 {
		return Field{}, fmt.Errorf("sobel kernel size %d must be odd and in [1, 31]: %w", ksize, ErrInvalidArgument)
	}

	src, err := MatFromField(f)
	if err != nil {
		return Field{}, err
	}
	defer src.Close()

	dx, dy := 1, 0
	if axis == AxisY {
		dx, dy = 0, 1
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Sobel(src, &dst, gocv.MatTypeCV64F, dx, dy, ksize, 1, 0, gocv.BorderDefault)

	return FieldFromMat(dst)
}

// CannyEdgeDetector runs gocv Canny on the 8-bit saturation of the image.
// The thresholds are handed to Canny as given.
type CannyEdgeDetector struct{}

func (CannyEdgeDetector) EdgeMap(img Field, low, high float64) (Field, error) {
	src, err := MatFromField(img)
	if err != nil {
		return Field{}, err
	}
	defer src.Close()

	u8 := gocv.NewMat()
	defer u8.Close()
	src.ConvertTo(&u8, matType(gocv.MatTypeCV8U, img.Channels))

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(u8, &edges, float32(low), float32(high))

	return FieldFromMat(edges)
}

// Correlate computes the same-size 2D correlation of a single channel src
// against kernel, anchored at the kernel center.
func Correlate(src, kernel Field) (Field, error) {
	if src.Channels != 1 || kernel.Channels != 1 {
		return Field{}, fmt.Errorf("correlate needs single channel fields, got %s and %s: %w", src.Shape(), kernel.Shape(), ErrInvalidArgument)
	}

	s, err := MatFromField(src)
	if err != nil {
		return Field{}, err
	}
	defer s.Close()

	k, err := MatFromField(kernel)
	if err != nil {
		return Field{}, err
	}
	defer k.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Filter2D(s, &dst, gocv.MatTypeCV64F, k, image.Pt(-1, -1), 0, gocv.BorderDefault)

	return FieldFromMat(dst)
}

// ArgMax returns the position (X = column, Y = row) of the first maximum of
// a single channel field.
func ArgMax(f Field) (image.Point, float64, error) {
	m, err := MatFromField(f)
	if err != nil {
		return image.Point{}, 0, err
	}
	defer m.Close()

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(m)
	return maxLoc, float64(maxVal), nil
}

// DrawRectangle returns a copy of img with r outlined in c.
func DrawRectangle(img Field, r image.Rectangle, c color.RGBA, thickness int) (Field, error) {
	m, err := MatFromField(img)
	if err != nil {
		return Field{}, err
	}
	defer m.Close()

	gocv.Rectangle(&m, r, c, thickness)

	return FieldFromMat(m)
}
