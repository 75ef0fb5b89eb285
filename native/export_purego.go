//go:build (darwin || linux || windows) && (amd64 || arm64)

package native

import (
	"fmt"

	"github.com/ebitengine/purego"

	"github.com/chazu/revcall/trampoline"
)

// Supported reports whether Export can produce native pointers.
const Supported = true

// Export returns a C-callable pointer for fn. fn must be a func whose
// parameters and result are integers, pointers or floats.
func Export(fn any) (entry trampoline.EntryPoint, err error) {
	// purego panics on bad signatures and when its thunk pool is used up.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("native: export %T: %v", fn, r)
		}
	}()
	return trampoline.EntryPoint(purego.NewCallback(fn)), nil
}
