package vm

import "fmt"

// ---------------------------------------------------------------------------
// Type: parameter and return shapes
// ---------------------------------------------------------------------------

// TypeCode classifies a parameter or return type by how it is passed at the
// native boundary.
type TypeCode uint8

const (
	TypeVoid TypeCode = iota
	TypeBool
	TypeChar
	TypeI1
	TypeU1
	TypeI2
	TypeU2
	TypeI4
	TypeU4
	TypeI8
	TypeU8
	TypeR4
	TypeR8
	TypeIntPtr
	TypeUIntPtr
	TypeObject
	TypeString
	TypeValue // value type passed by value; Size is required
)

var typeCodeNames = [...]string{
	TypeVoid:    "void",
	TypeBool:    "bool",
	TypeChar:    "char",
	TypeI1:      "int8",
	TypeU1:      "uint8",
	TypeI2:      "int16",
	TypeU2:      "uint16",
	TypeI4:      "int",
	TypeU4:      "uint",
	TypeI8:      "long",
	TypeU8:      "ulong",
	TypeR4:      "float",
	TypeR8:      "double",
	TypeIntPtr:  "intptr",
	TypeUIntPtr: "uintptr",
	TypeObject:  "object",
	TypeString:  "string",
	TypeValue:   "struct",
}

func (c TypeCode) String() string {
	if int(c) < len(typeCodeNames) {
		return typeCodeNames[c]
	}
	return fmt.Sprintf("TypeCode(%d)", c)
}

// Type describes one parameter or the return value of a method.
type Type struct {
	Code  TypeCode
	Size  int    // byte size, only meaningful for TypeValue
	Name  string // display name for value types (optional)
	ByRef bool   // passed by reference (ref/out)
}

// Common types.
var (
	Void    = Type{Code: TypeVoid}
	Bool    = Type{Code: TypeBool}
	Char    = Type{Code: TypeChar}
	Int8    = Type{Code: TypeI1}
	Uint8   = Type{Code: TypeU1}
	Int16   = Type{Code: TypeI2}
	Uint16  = Type{Code: TypeU2}
	Int32   = Type{Code: TypeI4}
	Uint32  = Type{Code: TypeU4}
	Int64   = Type{Code: TypeI8}
	Uint64  = Type{Code: TypeU8}
	Float32 = Type{Code: TypeR4}
	Float64 = Type{Code: TypeR8}
	IntPtr  = Type{Code: TypeIntPtr}
	UIntPtr = Type{Code: TypeUIntPtr}
	Object  = Type{Code: TypeObject}
	String  = Type{Code: TypeString}
)

// ValueType returns a by-value struct type of the given size.
func ValueType(name string, size int) Type {
	return Type{Code: TypeValue, Size: size, Name: name}
}

// Ref returns t passed by reference.
func (t Type) Ref() Type {
	t.ByRef = true
	return t
}

// IsVoid reports whether t is the void type.
func (t Type) IsVoid() bool {
	return t.Code == TypeVoid && !t.ByRef
}

// String implements the Stringer interface.
func (t Type) String() string {
	s := t.Code.String()
	if t.Code == TypeValue {
		if t.Name != "" {
			s = t.Name
		} else {
			s = fmt.Sprintf("struct[%d]", t.Size)
		}
	}
	if t.ByRef {
		s = "ref " + s
	}
	return s
}
