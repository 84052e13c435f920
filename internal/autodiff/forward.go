package autodiff

import "fmt"

// Forward replays the trace in creation order, propagating a tangent
// alongside every recorded entry: each entry's tangent is the linear
// combination of its operands' tangents weighted by the local partials
// captured at recording time.
//
// seed supplies one tangent per independent slot; the result holds one
// directional derivative per dependent slot. This is exact differentiation
// of the recorded arithmetic, not a finite-difference approximation. The
// sweep is O(K) in the trace length, only reads the trace and owns its
// scratch buffer, so concurrent Forward calls over one closed trace are
// safe.
func Forward(t *Trace, seed []float64) ([]float64, error) {
	if len(seed) != len(t.indeps) {
		return nil, fmt.Errorf("%w: tangent length %d, trace has %d independents",
			ErrDimensionMismatch, len(seed), len(t.indeps))
	}

	dot := make([]float64, len(t.entries))
	for i, slot := range t.indeps {
		dot[slot] = seed[i]
	}

	for k := range t.entries {
		e := &t.entries[k]
		if e.Op.arity() == 0 {
			continue // independents keep their seed, constants stay zero
		}
		var td float64
		for a := 0; a < e.Op.arity(); a++ {
			td += e.Partials[a] * dot[e.Args[a]]
		}
		dot[k] = td
	}

	out := make([]float64, len(t.deps))
	for j, slot := range t.deps {
		out[j] = dot[slot]
	}
	return out, nil
}
