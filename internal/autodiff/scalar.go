package autodiff

import (
	"fmt"
	"math"
)

// Scalar is an active value: a numeric payload paired with the trace slot
// that produced it. Arithmetic on Scalars is the only way trace entries are
// created; each method computes its result eagerly and appends exactly one
// entry carrying the local partial derivatives at the current point.
//
// A Scalar is only meaningful while the recording session that produced it
// is alive. Division by zero, log of a negative and similar conditions are
// not trapped: NaN and Inf propagate through payloads and partials per IEEE
// rules.
type Scalar struct {
	rec  *Recorder
	slot int32
	val  float64
}

// Value returns the payload computed during recording.
func (x Scalar) Value() float64 { return x.val }

// binary appends a two-operand entry. Operands from different (or dead)
// recordings are a protocol violation, latched for Close to report.
func (x Scalar) binary(op Opcode, y Scalar, val, dx, dy float64) Scalar {
	r := x.rec
	if r == nil {
		r = y.rec
	}
	if r == nil {
		return Scalar{slot: -1, val: val}
	}
	if x.rec != y.rec {
		r.setFault(fmt.Errorf("%w: operands from different recordings", ErrMalformedTrace))
		return Scalar{rec: r, slot: -1, val: val}
	}
	slot := r.record(entry{
		Op:       op,
		Args:     [2]int32{x.slot, y.slot},
		Partials: [2]float64{dx, dy},
		Value:    val,
	})
	return Scalar{rec: r, slot: slot, val: val}
}

// unary appends a one-operand entry. aux carries a folded immediate or
// exponent when the opcode has one.
func (x Scalar) unary(op Opcode, val, dx, aux float64) Scalar {
	r := x.rec
	if r == nil {
		return Scalar{slot: -1, val: val}
	}
	slot := r.record(entry{
		Op:       op,
		Args:     [2]int32{x.slot, -1},
		Partials: [2]float64{dx, 0},
		Value:    val,
		Aux:      aux,
	})
	return Scalar{rec: r, slot: slot, val: val}
}

// Add returns x + y.
func (x Scalar) Add(y Scalar) Scalar {
	return x.binary(OpAdd, y, x.val+y.val, 1, 1)
}

// Sub returns x - y.
func (x Scalar) Sub(y Scalar) Scalar {
	return x.binary(OpSub, y, x.val-y.val, 1, -1)
}

// Mul returns x * y.
func (x Scalar) Mul(y Scalar) Scalar {
	return x.binary(OpMul, y, x.val*y.val, y.val, x.val)
}

// Div returns x / y.
func (x Scalar) Div(y Scalar) Scalar {
	q := x.val / y.val
	return x.binary(OpDiv, y, q, 1/y.val, -q/y.val)
}

// Neg returns -x.
func (x Scalar) Neg() Scalar {
	return x.unary(OpNeg, -x.val, -1, 0)
}

// Square returns x*x as a single entry, so its reverse adjoint is 2x by one
// accumulation instead of two.
func (x Scalar) Square() Scalar {
	return x.unary(OpSquare, x.val*x.val, 2*x.val, 0)
}

// Sqrt returns the square root of x.
func (x Scalar) Sqrt() Scalar {
	s := math.Sqrt(x.val)
	return x.unary(OpSqrt, s, 0.5/s, 0)
}

// Exp returns e**x.
func (x Scalar) Exp() Scalar {
	e := math.Exp(x.val)
	return x.unary(OpExp, e, e, 0)
}

// Log returns the natural logarithm of x.
func (x Scalar) Log() Scalar {
	return x.unary(OpLog, math.Log(x.val), 1/x.val, 0)
}

// Sin returns the sine of x.
func (x Scalar) Sin() Scalar {
	return x.unary(OpSin, math.Sin(x.val), math.Cos(x.val), 0)
}

// Cos returns the cosine of x.
func (x Scalar) Cos() Scalar {
	return x.unary(OpCos, math.Cos(x.val), -math.Sin(x.val), 0)
}

// Pow returns x raised to the constant exponent p.
func (x Scalar) Pow(p float64) Scalar {
	return x.unary(OpPow, math.Pow(x.val, p), p*math.Pow(x.val, p-1), p)
}

// Constant-folded arithmetic: the immediate is a zero-derivative leaf and
// never consumes a trace slot. It is kept in the entry's aux field for
// inspection and serialization only.

// AddConst returns x + c.
func (x Scalar) AddConst(c float64) Scalar {
	return x.unary(OpAddConst, x.val+c, 1, c)
}

// SubConst returns x - c.
func (x Scalar) SubConst(c float64) Scalar {
	return x.unary(OpSubConst, x.val-c, 1, c)
}

// SubFrom returns c - x.
func (x Scalar) SubFrom(c float64) Scalar {
	return x.unary(OpConstSub, c-x.val, -1, c)
}

// MulConst returns x * c.
func (x Scalar) MulConst(c float64) Scalar {
	return x.unary(OpMulConst, x.val*c, c, c)
}

// DivConst returns x / c.
func (x Scalar) DivConst(c float64) Scalar {
	return x.unary(OpDivConst, x.val/c, 1/c, c)
}

// DivFrom returns c / x.
func (x Scalar) DivFrom(c float64) Scalar {
	q := c / x.val
	return x.unary(OpConstDiv, q, -q/x.val, c)
}
