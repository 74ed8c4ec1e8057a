package main

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectralSolver reconstructs a field from its gradients in closed form by
// diagonalizing the 5-point Laplacian with a 2D discrete sine transform.
// The outer ring of the boundary field holds the Dirichlet values; the
// result is returned in [-1, 1].
type SpectralSolver struct{}

func (SpectralSolver) Solve(g GradientField, boundary *Field) (Field, error) {
	if err := g.check(); err != nil {
		return Field{}, err
	}
	rows, cols, channels := g.X.Rows, g.X.Cols, g.X.Channels
	if rows < 3 || cols < 3 {
		return Field{}, fmt.Errorf("spectral solve needs at least 3x3 samples, got %s: %w", g.X.Shape(), ErrInvalidArgument)
	}

	result := NewField(rows, cols, channels)
	if boundary != nil {
		if !boundary.SameShape(g.X) {
			return Field{}, fmt.Errorf("boundary %s vs gradient %s: %w", boundary.Shape(), g.X.Shape(), ErrShapeMismatch)
		}
		copyRing(result, *boundary)
	}

	var eg errgroup.Group
	for ch := 0; ch < channels; ch++ {
		ch := ch
		eg.Go(func() error {
			solveChannel(g, result, ch)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Field{}, err
	}

	return Normalized(result), nil
}

// copyRing copies the outermost rows and columns of src into dst.
func copyRing(dst, src Field) {
	for r := 0; r < src.Rows; r++ {
		for c := 0; c < src.Cols; c++ {
			if r != 0 && c != 0 && r != src.Rows-1 && c != src.Cols-1 {
				continue
			}
			for ch := 0; ch < src.Channels; ch++ {
				dst.Set(r, c, ch, src.At(r, c, ch))
			}
		}
	}
}

// solveChannel fills the interior of out for one channel. out already holds
// the boundary ring and zeros elsewhere.
func solveChannel(g GradientField, out Field, ch int) {
	rows, cols := out.Rows, out.Cols
	m, n := rows-2, cols-2

	// divergence of the gradient field
	div := make([]float64, rows*cols)
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			div[r*cols+c+1] += g.X.At(r, c+1, ch) - g.X.At(r, c, ch)
			div[(r+1)*cols+c] += g.Y.At(r+1, c, ch) - g.Y.At(r, c, ch)
		}
	}

	// interior right hand side minus the boundary's Laplacian
	rhs := make([]float64, m*n)
	for r := 1; r <= m; r++ {
		for c := 1; c <= n; c++ {
			lap := out.At(r-1, c, ch) + out.At(r+1, c, ch) + out.At(r, c-1, ch) + out.At(r, c+1, ch) - 4*out.At(r, c, ch)
			rhs[(r-1)*n+c-1] = div[r*cols+c] - lap
		}
	}

	rowDST, colDST := fourier.NewDST(n), fourier.NewDST(m)
	transform2D(rhs, m, n, rowDST, colDST)

	for r := 0; r < m; r++ {
		ey := 2*math.Cos(math.Pi*float64(r+1)/float64(m+1)) - 2
		for c := 0; c < n; c++ {
			ex := 2*math.Cos(math.Pi*float64(c+1)/float64(n+1)) - 2
			rhs[r*n+c] /= ex + ey
		}
	}

	// the unnormalized DST-I is its own inverse up to 2(n+1) per axis
	transform2D(rhs, m, n, rowDST, colDST)
	scale := 1 / (4 * float64(m+1) * float64(n+1))

	for r := 0; r < m; r++ {
		for c := 0; c < n; c++ {
			out.Set(r+1, c+1, ch, rhs[r*n+c]*scale)
		}
	}
}

// transform2D applies the DST along every row then every column of the
// m x n row-major matrix a, in place.
func transform2D(a []float64, m, n int, rowDST, colDST *fourier.DST) {
	row := make([]float64, n)
	for r := 0; r < m; r++ {
		rowDST.Transform(row, a[r*n:(r+1)*n])
		copy(a[r*n:(r+1)*n], row)
	}

	col := make([]float64, m)
	res := make([]float64, m)
	for c := 0; c < n; c++ {
		for r := 0; r < m; r++ {
			col[r] = a[r*n+c]
		}
		colDST.Transform(res, col)
		for r := 0; r < m; r++ {
			a[r*n+c] = res[r]
		}
	}
}
