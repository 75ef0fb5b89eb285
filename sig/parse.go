package sig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned by Parse for keys that are not well formed.
var ErrMalformed = errors.New("sig: malformed signature")

// Shape is a parsed signature key.
type Shape struct {
	Return string
	Params []string
}

// Parse splits a key into its return and parameter codes and checks every
// code. Parse(s).String() == s for every valid key.
func Parse(s string) (Shape, error) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Shape{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	sh := Shape{Return: s[:open]}
	if sh.Return != CodeVoid && !validCode(sh.Return) {
		return Shape{}, fmt.Errorf("%w: bad return code %q in %q", ErrMalformed, sh.Return, s)
	}
	body := s[open+1 : len(s)-1]
	if body == "" {
		return sh, nil
	}
	for _, p := range strings.Split(body, ",") {
		if !validCode(p) {
			return Shape{}, fmt.Errorf("%w: bad parameter code %q in %q", ErrMalformed, p, s)
		}
		sh.Params = append(sh.Params, p)
	}
	return sh, nil
}

// String returns the canonical key.
func (sh Shape) String() string {
	return sh.Return + "(" + strings.Join(sh.Params, ",") + ")"
}

// HasStruct reports whether any position is a by-value struct.
func (sh Shape) HasStruct() bool {
	if IsStruct(sh.Return) {
		return true
	}
	for _, p := range sh.Params {
		if IsStruct(p) {
			return true
		}
	}
	return false
}

// IsStruct reports whether code is a by-value struct code (sN).
func IsStruct(code string) bool {
	_, ok := structSize(code)
	return ok
}

// IsFloat reports whether code is passed in floating point registers.
func IsFloat(code string) bool {
	return code == CodeR4 || code == CodeR8
}

func structSize(code string) (int, bool) {
	if !strings.HasPrefix(code, codeStruct) {
		return 0, false
	}
	n, err := strconv.Atoi(code[len(codeStruct):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func validCode(code string) bool {
	switch code {
	case CodeI1, CodeU1, CodeI2, CodeU2, CodeI4, CodeU4,
		CodeI8, CodeU8, CodeR4, CodeR8, CodeIntPtr, CodeUIntPtr:
		return true
	}
	return IsStruct(code)
}
