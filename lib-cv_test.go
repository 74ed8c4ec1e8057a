package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatFieldRoundTrip(t *testing.T) {
	f := randomField(rand.New(rand.NewSource(1)), 5, 7, 3, -10, 10)

	m, err := MatFromField(f)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 5, m.Rows())
	assert.Equal(t, 7, m.Cols())
	assert.Equal(t, 3, m.Channels())

	back, err := FieldFromMat(m)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestSobelDifferentiatorRamp(t *testing.T) {
	f := NewField(6, 8, 1)
	for r := 0; r < 6; r++ {
		for c := 0; c < 8; c++ {
			f.Set(r, c, 0, float64(c))
		}
	}

	d := SobelDifferentiator{}
	gx, err := d.Gradient(f, AxisX, 3)
	require.NoError(t, err)
	gy, err := d.Gradient(f, AxisY, 3)
	require.NoError(t, err)

	for r := 1; r < 5; r++ {
		for c := 1; c < 7; c++ {
			assert.InDelta(t, 8.0, gx.At(r, c, 0), 1e-9)
			assert.InDelta(t, 0.0, gy.At(r, c, 0), 1e-9)
		}
	}

	_, err = d.Gradient(f, AxisX, 4)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCannyEdgeDetectorFindsStep(t *testing.T) {
	img := NewField(20, 20, 3)
	for r := 0; r < 20; r++ {
		for c := 10; c < 20; c++ {
			for ch := 0; ch < 3; ch++ {
				img.Set(r, c, ch, 255)
			}
		}
	}

	edges, err := CannyEdgeDetector{}.EdgeMap(img, 50, 150)
	require.NoError(t, err)
	assert.Equal(t, "20x20x1", edges.Shape())

	found := false
	for r := 0; r < 20; r++ {
		if edges.At(r, 9, 0) == 255 || edges.At(r, 10, 0) == 255 {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, 0.0, edges.At(10, 2, 0))
}
