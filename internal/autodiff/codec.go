package autodiff

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Trace files carry a schema version so stale files are rejected instead of
// silently misread when the entry layout changes.
const traceSchemaVersion uint16 = 1

// tracePayload is the on-disk form of a closed trace.
type tracePayload struct {
	Schema       uint16  `msgpack:"schema"`
	Entries      []entry `msgpack:"entries"`
	Independents []int32 `msgpack:"independents"`
	Dependents   []int32 `msgpack:"dependents"`
}

// Marshal serializes the closed trace into a versioned msgpack payload.
func (t *Trace) Marshal() ([]byte, error) {
	p := tracePayload{
		Schema:       traceSchemaVersion,
		Entries:      t.entries,
		Independents: t.indeps,
		Dependents:   t.deps,
	}
	data, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("encode trace: %w", err)
	}
	return data, nil
}

// UnmarshalTrace decodes a payload produced by Marshal, re-validating the
// structural invariants so a corrupted file cannot smuggle forward
// references or out-of-range slots past the evaluators.
func UnmarshalTrace(data []byte) (*Trace, error) {
	var p tracePayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if p.Schema != traceSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedSchema, p.Schema, traceSchemaVersion)
	}

	limit, err := safecast.Conv[int32](len(p.Entries))
	if err != nil {
		return nil, fmt.Errorf("%w: %d entries", ErrMalformedTrace, len(p.Entries))
	}
	for k, e := range p.Entries {
		if !e.Op.valid() {
			return nil, fmt.Errorf("%w: entry %d has unknown opcode %d", ErrMalformedTrace, k, e.Op)
		}
		for a := 0; a < e.Op.arity(); a++ {
			if e.Args[a] < 0 || int(e.Args[a]) >= k {
				return nil, fmt.Errorf("%w: entry %d references slot %d", ErrMalformedTrace, k, e.Args[a])
			}
		}
	}
	for i, slot := range p.Independents {
		if slot < 0 || slot >= limit || p.Entries[slot].Op != OpIndependent {
			return nil, fmt.Errorf("%w: independent %d bound to slot %d", ErrMalformedTrace, i, slot)
		}
	}
	for j, slot := range p.Dependents {
		if slot < 0 || slot >= limit {
			return nil, fmt.Errorf("%w: dependent %d bound to slot %d", ErrMalformedTrace, j, slot)
		}
	}

	return &Trace{entries: p.Entries, indeps: p.Independents, deps: p.Dependents}, nil
}

// Save writes the trace to a file.
func Save(t *Trace, path string) error {
	data, err := t.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// Load reads a trace previously written by Save.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return UnmarshalTrace(data)
}
