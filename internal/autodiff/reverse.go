package autodiff

import "fmt"

// Reverse replays the trace in strict reverse creation order, distributing
// adjoints from the dependent slots back to the independents: each entry's
// accumulated adjoint is scattered to its operands weighted by the local
// partials. Accumulation (not assignment) is what makes a slot with several
// consumers collect one contribution per consumer.
//
// weights supplies one adjoint seed per dependent slot; the result holds one
// partial derivative per independent slot. The sweep is O(K) regardless of
// the input count, which makes it the preferred mode when outputs are few.
// Like Forward, it only reads the trace, so concurrent calls are safe.
func Reverse(t *Trace, weights []float64) ([]float64, error) {
	if len(weights) != len(t.deps) {
		return nil, fmt.Errorf("%w: weight length %d, trace has %d dependents",
			ErrDimensionMismatch, len(weights), len(t.deps))
	}

	bar := make([]float64, len(t.entries))
	for j, slot := range t.deps {
		bar[slot] += weights[j]
	}

	for k := len(t.entries) - 1; k >= 0; k-- {
		e := &t.entries[k]
		w := bar[k]
		if w == 0 {
			continue // nothing flowed back to this entry
		}
		for a := 0; a < e.Op.arity(); a++ {
			bar[e.Args[a]] += w * e.Partials[a]
		}
	}

	out := make([]float64, len(t.indeps))
	for i, slot := range t.indeps {
		out[i] = bar[slot]
	}
	return out, nil
}
