package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedianGradientsIgnoresZeroMedianNoise(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	base := GradientField{
		X: randomField(rnd, 9, 12, 3, -1, 1),
		Y: randomField(rnd, 9, 12, 3, -1, 1),
	}
	noise := []float64{-3, -1, 0, 0.5, 4}

	var gx, gy []Field
	for range noise {
		gx = append(gx, base.X.Clone())
		gy = append(gy, base.Y.Clone())
	}
	for i := range base.X.Data {
		px, py := rnd.Perm(len(noise)), rnd.Perm(len(noise))
		for k := range noise {
			gx[k].Data[i] += noise[px[k]]
			gy[k].Data[i] += noise[py[k]] * 0.25
		}
	}

	median, err := MedianGradients(gx, gy)
	require.NoError(t, err)
	requireFieldsInDelta(t, base.X, median.X, 1e-12)
	requireFieldsInDelta(t, base.Y, median.Y, 1e-12)
}

func TestMedianGradientsEvenCount(t *testing.T) {
	fields := []Field{NewField(1, 1, 1), NewField(1, 1, 1), NewField(1, 1, 1), NewField(1, 1, 1)}
	for i, v := range []float64{4, 1, 3, 10} {
		fields[i].Data[0] = v
	}

	median, err := MedianGradients(fields, fields)
	require.NoError(t, err)
	assert.Equal(t, 3.5, median.X.Data[0])
}

func TestMedianGradientsShapeMismatch(t *testing.T) {
	_, err := MedianGradients([]Field{NewField(2, 2, 1), NewField(2, 3, 1)}, []Field{NewField(2, 2, 1), NewField(2, 2, 1)})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEstimateWatermarkMissingFolder(t *testing.T) {
	e := DefaultConfig().Estimator()
	_, _, err := e.EstimateWatermark(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEstimateWatermarkEmptyFolder(t *testing.T) {
	e := DefaultConfig().Estimator()
	_, _, err := e.EstimateWatermark(t.TempDir())
	require.ErrorIs(t, err, ErrNoImages)
}

func TestEstimateWatermarkSkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	rnd := rand.New(rand.NewSource(5))
	mark := randomField(rnd, 24, 32, 3, 0, 255)
	for i, name := range []string{"a.png", "b.png", filepath.Join("nested", "c.png")} {
		img := randomField(rand.New(rand.NewSource(int64(i))), 24, 32, 3, 0, 255)
		for k := range img.Data {
			img.Data[k] = 0.5*img.Data[k] + 0.5*mark.Data[k]
		}
		require.NoError(t, WriteImage(filepath.Join(dir, name), img, false))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644))

	est, outcomes, err := DefaultConfig().Estimator().EstimateWatermark(dir)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	skipped := 0
	for _, o := range outcomes {
		if o.Skipped() {
			skipped++
			assert.ErrorIs(t, o.Err, ErrDecodeFailure)
			assert.Equal(t, "notes.txt", filepath.Base(o.Path))
		}
	}
	assert.Equal(t, 1, skipped)

	require.Len(t, est.GradX, 3)
	require.Len(t, est.GradY, 3)
	assert.Equal(t, "24x32x3", est.Gradient.X.Shape())
	assert.Equal(t, "24x32x3", est.Gradient.Y.Shape())
}

func TestEstimateWatermarkShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	rnd := rand.New(rand.NewSource(9))
	require.NoError(t, WriteImage(filepath.Join(dir, "a.png"), randomField(rnd, 10, 10, 3, 0, 255), false))
	require.NoError(t, WriteImage(filepath.Join(dir, "b.png"), randomField(rnd, 12, 10, 3, 0, 255), false))

	_, _, err := DefaultConfig().Estimator().EstimateWatermark(dir)
	require.ErrorIs(t, err, ErrShapeMismatch)
}
