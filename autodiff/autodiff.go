// Copyright 2026 Tracegrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides trace-based automatic differentiation for
// scalar functions: exact first derivatives by recording one execution of
// the function and replaying the trace, with no symbolic algebra and no
// finite-difference truncation error.
//
// A recording session captures every elementary operation performed on
// Scalar values. The closed trace can then be replayed any number of times
// in forward mode (tangent propagation, one direction per sweep) or reverse
// mode (adjoint propagation, the whole gradient in one sweep).
//
// Example:
//
//	import "github.com/tracegrad/tracegrad/autodiff"
//
//	func main() {
//	    // f(x, y) = x²y at (3, 2)
//	    rec, _ := autodiff.Open(0, 2, 1)
//	    x, _ := rec.Independent(0, 3)
//	    y, _ := rec.Independent(1, 2)
//	    var f float64
//	    rec.Dependent(0, x.Square().Mul(y), &f)
//	    trace, _ := rec.Close()
//
//	    grad, _ := autodiff.Reverse(trace, []float64{1}) // [12, 9]
//	}
//
// For the common scalar-output case the Gradient driver hides the two-phase
// protocol behind a single call.
package autodiff

import (
	internal "github.com/tracegrad/tracegrad/internal/autodiff"
)

// Scalar is an active value whose arithmetic populates the trace.
type Scalar = internal.Scalar

// Recorder is an open recording session.
type Recorder = internal.Recorder

// Trace is a closed, replayable recording of one function execution.
type Trace = internal.Trace

// Func is a scalar-valued function over active values, for the one-shot
// drivers.
type Func = internal.Func

// Protocol fault sentinels. Match with errors.Is.
var (
	ErrAlreadyRecording  = internal.ErrAlreadyRecording
	ErrRecordingClosed   = internal.ErrRecordingClosed
	ErrOutOfOrderBinding = internal.ErrOutOfOrderBinding
	ErrIncompleteBinding = internal.ErrIncompleteBinding
	ErrMalformedTrace    = internal.ErrMalformedTrace
	ErrDimensionMismatch = internal.ErrDimensionMismatch
	ErrUnsupportedSchema = internal.ErrUnsupportedSchema
)

// Open starts a recording session for a function of n inputs and m outputs.
func Open(tag, n, m int) (*Recorder, error) {
	return internal.Open(tag, n, m)
}

// Forward computes directional derivatives: one tangent per independent in,
// one per dependent out.
func Forward(t *Trace, seed []float64) ([]float64, error) {
	return internal.Forward(t, seed)
}

// Reverse computes adjoints: one weight per dependent in, one partial
// derivative per independent out.
func Reverse(t *Trace, weights []float64) ([]float64, error) {
	return internal.Reverse(t, weights)
}

// Record runs f once under a fresh session and returns the closed trace and
// the recorded output value.
func Record(tag int, f Func, point []float64) (*Trace, float64, error) {
	return internal.Record(tag, f, point)
}

// Gradient records f at the given point and returns the full gradient via
// one reverse sweep.
func Gradient(tag int, f Func, point []float64) ([]float64, error) {
	return internal.Gradient(tag, f, point)
}

// TraceGradient computes the gradient of an already-closed single-output
// trace.
func TraceGradient(t *Trace) ([]float64, error) {
	return internal.TraceGradient(t)
}

// Jacobian assembles the full m-by-n Jacobian of a closed trace.
func Jacobian(t *Trace) ([][]float64, error) {
	return internal.Jacobian(t)
}

// Save writes a closed trace to a file; Load reads it back.
func Save(t *Trace, path string) error {
	return internal.Save(t, path)
}

// Load reads a trace previously written by Save.
func Load(path string) (*Trace, error) {
	return internal.Load(path)
}

// UnmarshalTrace decodes a trace payload produced by Trace.Marshal.
func UnmarshalTrace(data []byte) (*Trace, error) {
	return internal.UnmarshalTrace(data)
}
