package autodiff

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Func is a scalar-valued function expressed over active values, suitable
// for the one-shot drivers. It receives the bound independents and returns
// the single dependent result.
type Func func(x []Scalar) Scalar

// Record runs f once under a fresh recording session at the given point and
// returns the closed trace together with the recorded output value. It is a
// plain sequencing of Open, Independent, Dependent and Close.
func Record(tag int, f Func, point []float64) (*Trace, float64, error) {
	rec, err := Open(tag, len(point), 1)
	if err != nil {
		return nil, 0, err
	}

	x := make([]Scalar, len(point))
	for i, v := range point {
		if x[i], err = rec.Independent(i, v); err != nil {
			rec.Close() // release the tag
			return nil, 0, err
		}
	}

	var y float64
	if err := rec.Dependent(0, f(x), &y); err != nil {
		rec.Close()
		return nil, 0, err
	}

	t, err := rec.Close()
	if err != nil {
		return nil, 0, err
	}
	return t, y, nil
}

// Gradient records f once at the given point and computes the full gradient
// with a single unit-weight reverse sweep.
func Gradient(tag int, f Func, point []float64) ([]float64, error) {
	t, _, err := Record(tag, f, point)
	if err != nil {
		return nil, err
	}
	return Reverse(t, []float64{1})
}

// TraceGradient computes the gradient from an already-closed single-output
// trace, saving the re-recording that Gradient performs.
func TraceGradient(t *Trace) ([]float64, error) {
	if t.NumDependents() != 1 {
		return nil, fmt.Errorf("%w: gradient requires exactly 1 dependent, trace has %d",
			ErrDimensionMismatch, t.NumDependents())
	}
	return Reverse(t, []float64{1})
}

// Jacobian assembles the full m-by-n Jacobian of a closed trace from one
// forward sweep per basis direction. The sweeps share the read-only trace
// and own their scratch buffers, so they run concurrently.
func Jacobian(t *Trace) ([][]float64, error) {
	n, m := t.NumIndependents(), t.NumDependents()
	jac := make([][]float64, m)
	for j := range jac {
		jac[j] = make([]float64, n)
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			seed := make([]float64, n)
			seed[i] = 1
			col, err := Forward(t, seed)
			if err != nil {
				return err
			}
			for j := range col {
				jac[j][i] = col[j]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jac, nil
}
