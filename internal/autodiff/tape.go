// Package autodiff implements trace-based automatic differentiation for
// scalar functions.
//
// A function written over Scalar values is executed once inside a recording
// session; every elementary operation appends one entry to the trace,
// capturing the operation kind, its operand slots and the local partial
// derivatives at the recorded point. The closed trace is immutable and can
// be replayed any number of times:
//
//   - Forward propagates a tangent (directional derivative) in creation
//     order.
//   - Reverse propagates adjoints from the outputs back to the inputs.
//   - Gradient and Jacobian sequence recording and sweeps for the common
//     cases.
//
// Usage:
//
//	rec, _ := autodiff.Open(0, 2, 1)
//	x, _ := rec.Independent(0, 3.0)
//	y, _ := rec.Independent(1, 4.0)
//	var out float64
//	rec.Dependent(0, x.Mul(y), &out)
//	trace, _ := rec.Close()
//
//	grad, _ := autodiff.Reverse(trace, []float64{1}) // [4, 3]
package autodiff

// entry is one recorded elementary operation. Operand slots always reference
// earlier entries, so the trace is a topologically sorted DAG by
// construction.
type entry struct {
	Op       Opcode     `msgpack:"op"`
	Args     [2]int32   `msgpack:"args"`     // operand slots, -1 when unused
	Partials [2]float64 `msgpack:"partials"` // d(out)/d(arg) at the recorded point
	Value    float64    `msgpack:"value"`    // payload computed during recording
	Aux      float64    `msgpack:"aux"`      // folded immediate or exponent, when Op carries one
}

// noArgs marks both operand slots unused.
var noArgs = [2]int32{-1, -1}

// Trace is the closed, immutable recording of one function execution. It is
// safe for concurrent read-only use: the sweeps only read the trace and
// write to their own scratch buffers.
type Trace struct {
	entries []entry
	indeps  []int32 // trace slots of the independent (input) roots
	deps    []int32 // trace slots of the dependent (output) sinks
}

// Len returns the number of recorded entries.
func (t *Trace) Len() int { return len(t.entries) }

// NumIndependents returns the input count n.
func (t *Trace) NumIndependents() int { return len(t.indeps) }

// NumDependents returns the output count m.
func (t *Trace) NumDependents() int { return len(t.deps) }

// Values returns the dependent values fixed at recording time, without
// re-executing the recorded function.
func (t *Trace) Values() []float64 {
	out := make([]float64, len(t.deps))
	for j, slot := range t.deps {
		out[j] = t.entries[slot].Value
	}
	return out
}
