package main

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// Normalize maps every channel of f onto [0, 1] using the channel's own
// minimum and maximum over the spatial axes. A constant channel maps to 0.
func Normalize(f Field) Field {
	out := NewField(f.Rows, f.Cols, f.Channels)
	if f.Empty() {
		return out
	}

	for ch := 0; ch < f.Channels; ch++ {
		p := f.Plane(ch)
		lo, hi := floats.Min(p), floats.Max(p)
		if hi == lo {
			log.Debug().Int("channel", ch).Float64("value", lo).Msg("normalize: constant channel")
			floats.Scale(0, p)
		} else {
			floats.AddConst(-lo, p)
			floats.Scale(1/(hi-lo), p)
		}
		out.SetPlane(ch, p)
	}

	return out
}

// Normalized maps f onto [-1, 1] per channel, which is the range used for
// correlation and template matching.
func Normalized(f Field) Field {
	out := Normalize(f)
	for i, v := range out.Data {
		out.Data[i] = 2*v - 1
	}
	return out
}
