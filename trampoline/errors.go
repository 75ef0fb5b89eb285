package trampoline

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSignature means no trampoline family was compiled for the
	// method's signature shape.
	ErrUnknownSignature = errors.New("no trampoline family for signature")

	// ErrFamilyExhausted means the family exists but every slot has been
	// claimed by another method.
	ErrFamilyExhausted = errors.New("trampoline family exhausted")

	// ErrNotInitialized is returned when Resolve runs before Initialize.
	ErrNotInitialized = errors.New("trampoline registry not initialized")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("trampoline registry closed")
)

// ResolveError reports a failed binding. Err is one of the sentinel errors
// above or an error from the signature encoder.
type ResolveError struct {
	Method    string // full method name
	Signature string // computed key, empty if encoding failed
	Err       error
}

func (e *ResolveError) Error() string {
	if e.Signature == "" {
		return fmt.Sprintf("resolve native callback for %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("resolve native callback for %s [%s]: %v", e.Method, e.Signature, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
