// Package native turns generated Go trampolines into C-callable function
// pointers.
//
// Go cannot emit machine code at run time. purego keeps a fixed pool of
// precompiled assembly thunks and assigns one to each exported function;
// the pointer is valid for the life of the process and is never released.
package native

import (
	"errors"
	"fmt"

	"github.com/chazu/revcall/trampoline"
)

// ErrUnsupported is returned on platforms without callback support.
var ErrUnsupported = errors.New("native: callbacks are not supported on this platform")

// ExportTable exports fns[i] for every signature sigs[i] and returns the
// table in the same order. Export failures stop the scan.
func ExportTable(sigs []string, fns []any) ([]trampoline.Stub, error) {
	if len(sigs) != len(fns) {
		return nil, fmt.Errorf("native: %d signatures for %d functions", len(sigs), len(fns))
	}
	stubs := make([]trampoline.Stub, len(fns))
	for i, fn := range fns {
		entry, err := Export(fn)
		if err != nil {
			return nil, fmt.Errorf("native: slot %d (%s): %w", i, sigs[i], err)
		}
		stubs[i] = trampoline.Stub{Signature: sigs[i], Entry: entry}
	}
	return stubs, nil
}
