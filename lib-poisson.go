package main

// PoissonSolver recovers a field from its gradient field. boundary may be nil
// for a zero boundary; solvers that need one report ErrInvalidArgument.
type PoissonSolver interface {
	Solve(g GradientField, boundary *Field) (Field, error)
}

var (
	_ PoissonSolver = SpectralSolver{}
	_ PoissonSolver = (*IterativeSolver)(nil)
)
