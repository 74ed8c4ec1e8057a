package main

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNoImages        = errors.New("no images decoded")
	ErrDecodeFailure   = errors.New("decode failure")
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrEmptyMask       = errors.New("empty mask")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Field is a dense rows x cols x channels array of samples stored row-major
// with interleaved channels.
type Field struct {
	Rows     int
	Cols     int
	Channels int
	Data     []float64
}

// GradientField holds the partial derivatives of a field along X (columns)
// and Y (rows).
type GradientField struct {
	X Field
	Y Field
}

func NewField(rows, cols, channels int) Field {
	return Field{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Data:     make([]float64, rows*cols*channels),
	}
}

func (f Field) Index(r, c, ch int) int {
	return (r*f.Cols+c)*f.Channels + ch
}

func (f Field) At(r, c, ch int) float64 {
	return f.Data[f.Index(r, c, ch)]
}

func (f Field) Set(r, c, ch int, v float64) {
	f.Data[f.Index(r, c, ch)] = v
}

func (f Field) Clone() Field {
	out := f
	out.Data = append([]float64(nil), f.Data...)
	return out
}

func (f Field) Empty() bool {
	return f.Rows == 0 || f.Cols == 0 || f.Channels == 0
}

// SameShape reports whether f and o have identical dimensions.
func (f Field) SameShape(o Field) bool {
	return f.Rows == o.Rows && f.Cols == o.Cols && f.Channels == o.Channels
}

func (f Field) Shape() string {
	return fmt.Sprintf("%dx%dx%d", f.Rows, f.Cols, f.Channels)
}

// Plane copies channel ch into a rows*cols slice.
func (f Field) Plane(ch int) []float64 {
	p := make([]float64, f.Rows*f.Cols)
	for i := range p {
		p[i] = f.Data[i*f.Channels+ch]
	}
	return p
}

// SetPlane writes a rows*cols slice back into channel ch.
func (f Field) SetPlane(ch int, p []float64) {
	for i, v := range p {
		f.Data[i*f.Channels+ch] = v
	}
}

// Crop copies the region r (X = column, Y = row) into a new field.
func (f Field) Crop(r image.Rectangle) Field {
	out := NewField(r.Dy(), r.Dx(), f.Channels)
	for y := 0; y < out.Rows; y++ {
		src := f.Index(r.Min.Y+y, r.Min.X, 0)
		dst := out.Index(y, 0, 0)
		copy(out.Data[dst:dst+out.Cols*out.Channels], f.Data[src:src+out.Cols*out.Channels])
	}
	return out
}

// ChannelMean averages the channels of f into a single-channel field.
func (f Field) ChannelMean() Field {
	out := NewField(f.Rows, f.Cols, 1)
	for i := range out.Data {
		var sum float64
		for ch := 0; ch < f.Channels; ch++ {
			sum += f.Data[i*f.Channels+ch]
		}
		out.Data[i] = sum / float64(f.Channels)
	}
	return out
}

// Bounds returns the field extent as an image rectangle.
func (f Field) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Cols, f.Rows)
}

func (g GradientField) check() error {
	if !g.X.SameShape(g.Y) {
		return fmt.Errorf("gradient x %s vs y %s: %w", g.X.Shape(), g.Y.Shape(), ErrShapeMismatch)
	}
	return nil
}

// Magnitude computes sqrt(gx^2 + gy^2) per sample.
func (g GradientField) Magnitude() (Field, error) {
	if err := g.check(); err != nil {
		return Field{}, err
	}
	out := NewField(g.X.Rows, g.X.Cols, g.X.Channels)
	for i := range out.Data {
		x, y := g.X.Data[i], g.Y.Data[i]
		out.Data[i] = math.Hypot(x, y)
	}
	return out, nil
}

// Crop crops both gradient components to r.
func (g GradientField) Crop(r image.Rectangle) GradientField {
	return GradientField{X: g.X.Crop(r), Y: g.Y.Crop(r)}
}
