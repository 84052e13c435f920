package autodiff

import (
	"fmt"
	"math"
	"sync"

	"fortio.org/safecast"
)

// openTags tracks which recording tags are currently open. The tag only
// guards against accidental reuse; every other operation threads the
// *Recorder handle explicitly, so independent sessions never share state.
var (
	openMu   sync.Mutex
	openTags = make(map[int]struct{})
)

// Recorder is an open recording session. It owns the growing trace and
// enforces the binding protocol: all n independents are marked first, in
// order, then the recorded function runs, then all m dependents are marked,
// then Close fixes the trace.
//
// Recording is inherently sequential (entries reference earlier entries by
// index), so a Recorder must not be shared between goroutines.
type Recorder struct {
	tag       int
	n, m      int
	entries   []entry
	indeps    []int32
	deps      []int32
	nextIndep int
	nextDep   int
	closed    bool
	fault     error // first protocol violation observed during arithmetic
}

// Open starts a recording session for a function of n inputs and m outputs.
// It fails with ErrAlreadyRecording while another session holds the same tag.
func Open(tag, n, m int) (*Recorder, error) {
	if n <= 0 || m <= 0 {
		return nil, fmt.Errorf("%w: n=%d, m=%d (both must be positive)", ErrDimensionMismatch, n, m)
	}
	openMu.Lock()
	defer openMu.Unlock()
	if _, dup := openTags[tag]; dup {
		return nil, fmt.Errorf("%w: tag %d", ErrAlreadyRecording, tag)
	}
	openTags[tag] = struct{}{}
	return &Recorder{
		tag:     tag,
		n:       n,
		m:       m,
		entries: make([]entry, 0, 64),
		indeps:  make([]int32, 0, n),
		deps:    make([]int32, 0, m),
	}, nil
}

// Independent marks the i-th input slot, initializing an active scalar from
// the passive value. Indices must arrive in order 0..n-1, before any other
// active arithmetic.
func (r *Recorder) Independent(i int, value float64) (Scalar, error) {
	if r.closed {
		return Scalar{}, ErrRecordingClosed
	}
	if i != r.nextIndep || i >= r.n {
		return Scalar{}, fmt.Errorf("%w: independent index %d, expected %d", ErrOutOfOrderBinding, i, r.nextIndep)
	}
	if len(r.entries) != r.nextIndep {
		return Scalar{}, fmt.Errorf("%w: independent %d marked after arithmetic", ErrOutOfOrderBinding, i)
	}
	slot := r.push(entry{Op: OpIndependent, Args: noArgs, Value: value})
	r.indeps = append(r.indeps, slot)
	r.nextIndep++
	return Scalar{rec: r, slot: slot, val: value}, nil
}

// Dependent marks the j-th output slot and copies the scalar's payload into
// out (which may be nil). Indices must arrive in order 0..m-1.
func (r *Recorder) Dependent(j int, v Scalar, out *float64) error {
	if r.closed {
		return ErrRecordingClosed
	}
	if j != r.nextDep || j >= r.m {
		return fmt.Errorf("%w: dependent index %d, expected %d", ErrOutOfOrderBinding, j, r.nextDep)
	}
	if v.rec != r || v.slot < 0 {
		return fmt.Errorf("%w: dependent value was not produced by this recording", ErrMalformedTrace)
	}
	r.deps = append(r.deps, v.slot)
	r.nextDep++
	if out != nil {
		*out = v.val
	}
	return nil
}

// Constant records a constant-load entry and returns it as an active scalar.
// Plain constants mixed into expressions should normally use the *Const
// scalar methods, which fold the immediate without consuming a trace slot;
// Constant is for values that must occupy one (for example a constant
// output).
func (r *Recorder) Constant(value float64) Scalar {
	slot := r.record(entry{Op: OpConst, Args: noArgs, Value: value, Aux: value})
	return Scalar{rec: r, slot: slot, val: value}
}

// Close ends the session. On success the returned trace is immutable and
// replayable; the recorder is dead either way and the tag is released.
func (r *Recorder) Close() (*Trace, error) {
	if r.closed {
		return nil, ErrRecordingClosed
	}
	r.closed = true
	openMu.Lock()
	delete(openTags, r.tag)
	openMu.Unlock()
	if r.fault != nil {
		return nil, r.fault
	}
	if r.nextIndep != r.n || r.nextDep != r.m {
		return nil, fmt.Errorf("%w: marked %d/%d independents, %d/%d dependents",
			ErrIncompleteBinding, r.nextIndep, r.n, r.nextDep, r.m)
	}
	t := &Trace{entries: r.entries, indeps: r.indeps, deps: r.deps}
	r.entries, r.indeps, r.deps = nil, nil, nil
	return t, nil
}

// record appends an arithmetic entry, latching protocol violations for
// Close to report. A violation after Close cannot corrupt the already
// returned trace: the recorder's slices were detached.
func (r *Recorder) record(e entry) int32 {
	if r.closed {
		r.setFault(fmt.Errorf("%w: arithmetic after close", ErrMalformedTrace))
	} else if r.nextIndep < r.n {
		r.setFault(fmt.Errorf("%w: arithmetic before all %d independents were marked", ErrMalformedTrace, r.n))
	}
	return r.push(e)
}

func (r *Recorder) push(e entry) int32 {
	slot, err := safecast.Conv[int32](len(r.entries))
	if err != nil {
		r.setFault(fmt.Errorf("%w: trace exceeds %d entries", ErrMalformedTrace, math.MaxInt32))
		return -1
	}
	r.entries = append(r.entries, e)
	return slot
}

func (r *Recorder) setFault(err error) {
	if r.fault == nil {
		r.fault = err
	}
}
