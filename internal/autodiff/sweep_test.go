package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracegrad/tracegrad/internal/autodiff"
)

// misoTrace records f(x,y,z) = x² + z² + 2xy + z at (1,1,1).
// Value 5, gradient (4,2,3).
func misoTrace(t *testing.T, tag int) *autodiff.Trace {
	t.Helper()
	rec, err := autodiff.Open(tag, 3, 1)
	require.NoError(t, err)

	x, err := rec.Independent(0, 1)
	require.NoError(t, err)
	y, err := rec.Independent(1, 1)
	require.NoError(t, err)
	z, err := rec.Independent(2, 1)
	require.NoError(t, err)

	f := x.Square().
		Add(z.Square()).
		Add(x.Mul(y).MulConst(2)).
		Add(z)

	var out float64
	require.NoError(t, rec.Dependent(0, f, &out))
	require.Equal(t, 5.0, out)

	trace, err := rec.Close()
	require.NoError(t, err)
	return trace
}

func TestForwardBasisDirections(t *testing.T) {
	trace := misoTrace(t, 200)
	want := []float64{4, 2, 3}

	for i := range want {
		seed := make([]float64, 3)
		seed[i] = 1
		tangent, err := autodiff.Forward(trace, seed)
		require.NoError(t, err)
		assert.Equal(t, want[i], tangent[0], "direction %d", i)
	}
}

func TestReverseUnitWeight(t *testing.T) {
	trace := misoTrace(t, 201)

	adjoint, err := autodiff.Reverse(trace, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2, 3}, adjoint)
}

func TestForwardIsLinearInTheSeed(t *testing.T) {
	trace := misoTrace(t, 202)

	mixed, err := autodiff.Forward(trace, []float64{2, -1, 0.5})
	require.NoError(t, err)
	// 2·4 + (-1)·2 + 0.5·3
	assert.InDelta(t, 7.5, mixed[0], 1e-12)
}

func TestForwardReverseAgreement(t *testing.T) {
	// A rational-transcendental composite exercising every operand path.
	rec, err := autodiff.Open(203, 3, 1)
	require.NoError(t, err)
	x, err := rec.Independent(0, 0.7)
	require.NoError(t, err)
	y, err := rec.Independent(1, 1.4)
	require.NoError(t, err)
	z, err := rec.Independent(2, 2.3)
	require.NoError(t, err)

	f := x.Sin().Mul(y.Sqrt()).
		Add(z.Log().Div(x.AddConst(2))).
		Sub(y.Mul(z).MulConst(0.25)).
		Add(x.Exp().Pow(1.5))

	require.NoError(t, rec.Dependent(0, f, nil))
	trace, err := rec.Close()
	require.NoError(t, err)

	grad, err := autodiff.Reverse(trace, []float64{1})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		seed := make([]float64, 3)
		seed[i] = 1
		tangent, err := autodiff.Forward(trace, seed)
		require.NoError(t, err)
		assert.InDelta(t, grad[i], tangent[0], 1e-9, "partial %d", i)
	}
}

func TestMultiUseAccumulation(t *testing.T) {
	// f(x) = x*x where one slot feeds both operand positions: the adjoint
	// must be the sum of both contributions, 2x exactly.
	rec, err := autodiff.Open(204, 1, 1)
	require.NoError(t, err)
	x, err := rec.Independent(0, 3.0)
	require.NoError(t, err)
	require.NoError(t, rec.Dependent(0, x.Mul(x), nil))
	trace, err := rec.Close()
	require.NoError(t, err)

	grad, err := autodiff.Reverse(trace, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, grad)

	// Forward mode agrees: ẏ = y·ẋ + x·ẋ = 2x.
	tangent, err := autodiff.Forward(trace, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, tangent)
}

func TestSharedIntermediateAccumulation(t *testing.T) {
	// g = x+1 feeds two downstream products; dg contributions must sum.
	// f = g·g + g·x, df/dx = 2g + g + x = 3x + 2x + 3 at... computed below.
	rec, err := autodiff.Open(205, 1, 1)
	require.NoError(t, err)
	x, err := rec.Independent(0, 2.0)
	require.NoError(t, err)
	g := x.AddConst(1)
	f := g.Mul(g).Add(g.Mul(x))
	require.NoError(t, rec.Dependent(0, f, nil))
	trace, err := rec.Close()
	require.NoError(t, err)

	// f(x) = (x+1)² + (x+1)x, f'(x) = 2(x+1) + 2x + 1 = 11 at x=2.
	grad, err := autodiff.Reverse(trace, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{11}, grad)
}

func TestReplayDeterminism(t *testing.T) {
	trace := misoTrace(t, 206)
	seed := []float64{0.3, -1.2, 2.5}

	first, err := autodiff.Forward(trace, seed)
	require.NoError(t, err)
	second, err := autodiff.Forward(trace, seed)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	r1, err := autodiff.Reverse(trace, []float64{0.8})
	require.NoError(t, err)
	r2, err := autodiff.Reverse(trace, []float64{0.8})
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestSweepDimensionMismatch(t *testing.T) {
	trace := misoTrace(t, 207)

	_, err := autodiff.Forward(trace, []float64{1, 0})
	require.ErrorIs(t, err, autodiff.ErrDimensionMismatch)

	_, err = autodiff.Reverse(trace, []float64{1, 0})
	require.ErrorIs(t, err, autodiff.ErrDimensionMismatch)
}

func TestMultiOutputSweeps(t *testing.T) {
	// f(x,y) = (x·y, x+y) at (3,4).
	rec, err := autodiff.Open(208, 2, 2)
	require.NoError(t, err)
	x, err := rec.Independent(0, 3)
	require.NoError(t, err)
	y, err := rec.Independent(1, 4)
	require.NoError(t, err)
	require.NoError(t, rec.Dependent(0, x.Mul(y), nil))
	require.NoError(t, rec.Dependent(1, x.Add(y), nil))
	trace, err := rec.Close()
	require.NoError(t, err)

	// Forward along e0: (∂/∂x)(xy, x+y) = (4, 1).
	tangent, err := autodiff.Forward(trace, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 1}, tangent)

	// Reverse with weights (1,2): ū·J = (y+2, x+2) = (6, 5).
	adjoint, err := autodiff.Reverse(trace, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 5}, adjoint)
}

func TestDependentBoundToIndependent(t *testing.T) {
	// An output wired straight to an input: identity derivative.
	rec, err := autodiff.Open(209, 1, 1)
	require.NoError(t, err)
	x, err := rec.Independent(0, 9)
	require.NoError(t, err)
	var out float64
	require.NoError(t, rec.Dependent(0, x, &out))
	trace, err := rec.Close()
	require.NoError(t, err)
	require.Equal(t, 9.0, out)

	tangent, err := autodiff.Forward(trace, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, tangent)

	adjoint, err := autodiff.Reverse(trace, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, adjoint)
}
