package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomField(rnd *rand.Rand, rows, cols, channels int, lo, hi float64) Field {
	f := NewField(rows, cols, channels)
	for i := range f.Data {
		f.Data[i] = lo + (hi-lo)*rnd.Float64()
	}
	return f
}

// forwardGradients returns forward differences of f, zero in the last
// column (x) and last row (y).
func forwardGradients(f Field) GradientField {
	g := GradientField{X: NewField(f.Rows, f.Cols, f.Channels), Y: NewField(f.Rows, f.Cols, f.Channels)}
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			for ch := 0; ch < f.Channels; ch++ {
				if c+1 < f.Cols {
					g.X.Set(r, c, ch, f.At(r, c+1, ch)-f.At(r, c, ch))
				}
				if r+1 < f.Rows {
					g.Y.Set(r, c, ch, f.At(r+1, c, ch)-f.At(r, c, ch))
				}
			}
		}
	}
	return g
}

func requireFieldsInDelta(t *testing.T, want, got Field, delta float64) {
	t.Helper()
	require.True(t, want.SameShape(got), "shape %s vs %s", want.Shape(), got.Shape())
	for i := range want.Data {
		require.InDelta(t, want.Data[i], got.Data[i], delta, "sample %d", i)
	}
}
