// Package sig computes canonical signature keys for methods.
//
// A key names the native calling shape of a method, not its managed types:
// every reference type collapses to a pointer-sized integer, bool to an
// unsigned byte, and so on. Two methods with the same key can share a
// precompiled trampoline family.
//
// Keys have the form ret(arg,arg,...), for example v(i4) or i8(i,r8).
package sig

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chazu/revcall/vm"
)

// MaxLength bounds the length of an encoded key.
const MaxLength = 1000

var (
	// ErrSignatureTooLong is returned when a key does not fit the buffer limit.
	ErrSignatureTooLong = errors.New("sig: signature exceeds buffer limit")
	// ErrUnsupportedType is returned for types with no native shape.
	ErrUnsupportedType = errors.New("sig: unsupported type")
)

// Type codes.
const (
	CodeVoid    = "v"
	CodeI1      = "i1"
	CodeU1      = "u1"
	CodeI2      = "i2"
	CodeU2      = "u2"
	CodeI4      = "i4"
	CodeU4      = "u4"
	CodeI8      = "i8"
	CodeU8      = "u8"
	CodeR4      = "r4"
	CodeR8      = "r8"
	CodeIntPtr  = "i"
	CodeUIntPtr = "u"
	codeStruct  = "s"
)

// Encoder computes keys with a fixed length limit. The zero value uses
// MaxLength.
type Encoder struct {
	Limit int
}

// Encode returns the key for m. When includeReceiver is set a leading
// pointer-sized argument is added for the receiver.
func (e Encoder) Encode(m vm.Method, includeReceiver bool) (string, error) {
	limit := e.Limit
	if limit <= 0 {
		limit = MaxLength
	}
	var buf [128]byte
	out, err := AppendSignature(buf[:0], m, includeReceiver, limit)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode is Encoder{}.Encode.
func Encode(m vm.Method, includeReceiver bool) (string, error) {
	return Encoder{}.Encode(m, includeReceiver)
}

// AppendSignature appends the key for m to dst. The appended part never
// exceeds limit bytes; if it would, dst is returned unchanged together with
// ErrSignatureTooLong.
func AppendSignature(dst []byte, m vm.Method, includeReceiver bool, limit int) ([]byte, error) {
	start := len(dst)
	fail := func(err error) ([]byte, error) {
		return dst[:start], fmt.Errorf("%w: %s", err, m.FullName())
	}

	ret := m.ReturnType()
	var err error
	if ret.IsVoid() {
		dst = append(dst, CodeVoid...)
	} else if dst, err = appendCode(dst, ret); err != nil {
		return fail(err)
	}
	dst = append(dst, '(')

	n := 0
	if includeReceiver {
		dst = append(dst, CodeIntPtr...)
		n++
	}
	for _, p := range m.ParamTypes() {
		if n > 0 {
			dst = append(dst, ',')
		}
		if dst, err = appendCode(dst, p); err != nil {
			return fail(err)
		}
		n++
		if len(dst)-start > limit {
			return fail(ErrSignatureTooLong)
		}
	}
	dst = append(dst, ')')
	if len(dst)-start > limit {
		return fail(ErrSignatureTooLong)
	}
	return dst, nil
}

// Code returns the shape code for a single parameter or return type.
func Code(t vm.Type) (string, error) {
	out, err := appendCode(nil, t)
	return string(out), err
}

func appendCode(dst []byte, t vm.Type) ([]byte, error) {
	if t.ByRef {
		return append(dst, CodeIntPtr...), nil
	}
	switch t.Code {
	case vm.TypeBool, vm.TypeU1:
		return append(dst, CodeU1...), nil
	case vm.TypeI1:
		return append(dst, CodeI1...), nil
	case vm.TypeChar, vm.TypeU2:
		return append(dst, CodeU2...), nil
	case vm.TypeI2:
		return append(dst, CodeI2...), nil
	case vm.TypeI4:
		return append(dst, CodeI4...), nil
	case vm.TypeU4:
		return append(dst, CodeU4...), nil
	case vm.TypeI8:
		return append(dst, CodeI8...), nil
	case vm.TypeU8:
		return append(dst, CodeU8...), nil
	case vm.TypeR4:
		return append(dst, CodeR4...), nil
	case vm.TypeR8:
		return append(dst, CodeR8...), nil
	case vm.TypeIntPtr, vm.TypeObject, vm.TypeString:
		return append(dst, CodeIntPtr...), nil
	case vm.TypeUIntPtr:
		return append(dst, CodeUIntPtr...), nil
	case vm.TypeValue:
		if t.Size <= 0 {
			return dst, fmt.Errorf("%w: value type %s has no size", ErrUnsupportedType, t)
		}
		dst = append(dst, codeStruct...)
		return strconv.AppendInt(dst, int64(t.Size), 10), nil
	}
	return dst, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}
