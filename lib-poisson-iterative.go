package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// RandomSource supplies values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// IterativeSolver reconstructs a field by Jacobi relaxation of the Poisson
// equation. The Laplacian is obtained by differentiating the supplied
// gradients once more. The loop always runs Iterations times; there is no
// convergence test.
type IterativeSolver struct {
	Diff         Differentiator
	Rand         RandomSource
	KernelSize   int
	Iterations   int
	Step         float64
	BoundaryZero bool

	// Loss holds the sum of squared changes of every iteration of the last
	// Solve call.
	Loss []float64
}

// Solve implements PoissonSolver. The result is normalized to [0, 1].
func (s *IterativeSolver) Solve(g GradientField, boundary *Field) (Field, error) {
	f, loss, err := s.Reconstruct(g, boundary)
	s.Loss = loss
	return f, err
}

// Reconstruct runs the relaxation and returns the field together with the
// per-iteration sum of squared differences.
func (s *IterativeSolver) Reconstruct(g GradientField, boundary *Field) (Field, []float64, error) {
	if s.Iterations <= 0 {
		return Field{}, nil, fmt.Errorf("iterations %d: %w", s.Iterations, ErrInvalidArgument)
	}
	if s.Step <= 0 {
		return Field{}, nil, fmt.Errorf("step %g: %w", s.Step, ErrInvalidArgument)
	}
	if s.KernelSize <= 0 || s.KernelSize%2 == 0 {
		return Field{}, nil, fmt.Errorf("kernel size %d must be odd: %w", s.KernelSize, ErrInvalidArgument)
	}
	if s.Rand == nil {
		return Field{}, nil, fmt.Errorf("no random source: %w", ErrInvalidArgument)
	}
	if !s.BoundaryZero && boundary == nil {
		return Field{}, nil, fmt.Errorf("boundary image required when boundary_zero is off: %w", ErrInvalidArgument)
	}
	if err := g.check(); err != nil {
		return Field{}, nil, err
	}

	laplacian, err := s.laplacian(g)
	if err != nil {
		return Field{}, nil, err
	}

	var est Field
	if s.BoundaryZero {
		est = NewField(laplacian.Rows, laplacian.Cols, laplacian.Channels)
	} else {
		if !boundary.SameShape(laplacian) {
			return Field{}, nil, fmt.Errorf("boundary %s vs laplacian %s: %w", boundary.Shape(), laplacian.Shape(), ErrShapeMismatch)
		}
		est = boundary.Clone()
	}

	rows, cols, channels := est.Rows, est.Cols, est.Channels
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			for ch := 0; ch < channels; ch++ {
				est.Set(r, c, ch, s.Rand.Float64())
			}
		}
	}

	perf := time.Now()
	h2 := s.Step * s.Step
	loss := make([]float64, 0, s.Iterations)
	next := est.Clone()

	for i := 0; i < s.Iterations; i++ {
		var sum float64
		for r := 1; r < rows-1; r++ {
			for c := 1; c < cols-1; c++ {
				for ch := 0; ch < channels; ch++ {
					v := 0.25 * (est.At(r-1, c, ch) + est.At(r, c-1, ch) +
						est.At(r+1, c, ch) + est.At(r, c+1, ch) -
						h2*laplacian.At(r, c, ch))
					d := v - est.At(r, c, ch)
					sum += d * d
					next.Set(r, c, ch, v)
				}
			}
		}
		est, next = next, est
		loss = append(loss, sum)
	}

	out := Normalize(est)
	log.Debug().
		Int64("duration(ms)", time.Since(perf).Milliseconds()).
		Int("iterations", s.Iterations).
		Float64("loss", loss[len(loss)-1]).
		Msg("iterative reconstruction")

	return out, loss, nil
}

func (s *IterativeSolver) laplacian(g GradientField) (Field, error) {
	fxx, err := s.Diff.Gradient(g.X, AxisX, s.KernelSize)
	if err != nil {
		return Field{}, err
	}
	fyy, err := s.Diff.Gradient(g.Y, AxisY, s.KernelSize)
	if err != nil {
		return Field{}, err
	}

	for i := range fxx.Data {
		fxx.Data[i] += fyy.Data[i]
	}
	return fxx, nil
}
