// Package wire serializes registry snapshots for offline provisioning tools.
package wire

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/revcall/trampoline"
)

// cborEncMode uses canonical encoding so identical snapshots produce
// identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// snapshot is the on-disk form of trampoline.Snapshot.
type snapshot struct {
	RegistryID string   `cbor:"1,keyasint"`
	Taken      int64    `cbor:"2,keyasint"` // unix nanoseconds
	Slots      int      `cbor:"3,keyasint"`
	Bound      int      `cbor:"4,keyasint"`
	Families   []family `cbor:"5,keyasint,omitempty"`
}

type family struct {
	Signature string `cbor:"1,keyasint"`
	FirstSlot int    `cbor:"2,keyasint"`
	Capacity  int    `cbor:"3,keyasint"`
	Bound     int    `cbor:"4,keyasint"`
	Misses    int    `cbor:"5,keyasint"`
}

// MarshalSnapshot serializes a snapshot to CBOR bytes.
func MarshalSnapshot(s *trampoline.Snapshot) ([]byte, error) {
	w := snapshot{
		RegistryID: s.RegistryID,
		Taken:      s.Taken.UnixNano(),
		Slots:      s.Slots,
		Bound:      s.Bound,
	}
	for _, f := range s.Families {
		w.Families = append(w.Families, family(f))
	}
	return cborEncMode.Marshal(&w)
}

// UnmarshalSnapshot deserializes a snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*trampoline.Snapshot, error) {
	var w snapshot
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("wire: unmarshal snapshot: %w", err)
	}
	s := &trampoline.Snapshot{
		RegistryID: w.RegistryID,
		Taken:      time.Unix(0, w.Taken).UTC(),
		Slots:      w.Slots,
		Bound:      w.Bound,
	}
	for _, f := range w.Families {
		s.Families = append(s.Families, trampoline.FamilyUsage(f))
	}
	return s, nil
}

// WriteFile writes a snapshot to path.
func WriteFile(path string, s *trampoline.Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("wire: marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a snapshot written by WriteFile.
func ReadFile(path string) (*trampoline.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalSnapshot(data)
}
