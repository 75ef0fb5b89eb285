package wire

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/revcall/trampoline"
)

func sampleSnapshot() *trampoline.Snapshot {
	return &trampoline.Snapshot{
		RegistryID: "6f1c1a9e-6f2b-4d0b-9d55-0a4c3f5e2b11",
		Taken:      time.Date(2026, 3, 1, 12, 0, 0, 42, time.UTC),
		Slots:      3,
		Bound:      2,
		Families: []trampoline.FamilyUsage{
			{Signature: "v(i)", FirstSlot: -1, Misses: 2},
			{Signature: "v(i4)", FirstSlot: 0, Capacity: 2, Bound: 2, Misses: 1},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := sampleSnapshot()
	data, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("snapshot changed (-want +got):\n%s", diff)
	}
}

func TestSnapshotEncodingIsDeterministic(t *testing.T) {
	a, err := MarshalSnapshot(sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalSnapshot(sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical snapshots encoded differently")
	}
}

func TestUnmarshalSnapshotGarbage(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("UnmarshalSnapshot accepted garbage")
	}
}

func TestFileRoundTrip(t *testing.T) {
	reg := trampoline.New([]trampoline.Stub{{Signature: "v()", Entry: 0x10}}, nil)
	reg.Initialize()
	s := reg.Snapshot()

	path := filepath.Join(t.TempDir(), "usage.cbor")
	if err := WriteFile(path, s); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.RegistryID != reg.ID().String() || got.Slots != 1 || len(got.Families) != 1 {
		t.Errorf("ReadFile = %+v", got)
	}
	if !got.Taken.Equal(s.Taken) {
		t.Errorf("Taken = %v, want %v", got.Taken, s.Taken)
	}
}
