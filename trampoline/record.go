package trampoline

import (
	"fmt"
	"sync/atomic"

	"github.com/chazu/revcall/vm"
)

// EntryPoint is an opaque native function pointer. Zero means absent.
type EntryPoint uintptr

// String formats the pointer in hex.
func (e EntryPoint) String() string {
	return fmt.Sprintf("%#x", uintptr(e))
}

// Stub is one row of the generated trampoline table.
type Stub struct {
	Signature string
	Entry     EntryPoint
}

// Record is one slot of the trampoline table. Slot, entry point and
// signature are fixed when the table is built. The bound method is set at
// most once and never cleared.
type Record struct {
	slot      int
	entry     EntryPoint
	signature string
	bound     atomic.Pointer[binding]
}

type binding struct {
	method vm.Method
}

// Slot returns the position of the record in the trampoline table.
func (r *Record) Slot() int { return r.slot }

// Entry returns the native entry point.
func (r *Record) Entry() EntryPoint { return r.entry }

// Signature returns the signature key the trampoline was compiled for.
func (r *Record) Signature() string { return r.signature }

// Method returns the bound method, or nil while the slot is unassigned.
func (r *Record) Method() vm.Method {
	if b := r.bound.Load(); b != nil {
		return b.method
	}
	return nil
}

// IsBound reports whether a method owns the slot.
func (r *Record) IsBound() bool {
	return r.bound.Load() != nil
}

// bind performs the unbound -> bound transition. It fails if the slot is
// already owned.
func (r *Record) bind(m vm.Method) bool {
	return r.bound.CompareAndSwap(nil, &binding{method: m})
}
