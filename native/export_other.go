//go:build !((darwin || linux || windows) && (amd64 || arm64))

package native

import "github.com/chazu/revcall/trampoline"

// Supported reports whether Export can produce native pointers.
const Supported = false

// Export always fails on this platform.
func Export(fn any) (trampoline.EntryPoint, error) {
	return 0, ErrUnsupported
}
