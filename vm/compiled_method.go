package vm

import "strings"

// ---------------------------------------------------------------------------
// CompiledMethod: method identity and signature
// ---------------------------------------------------------------------------

// CompiledMethod describes a managed method. Identity is the pointer: two
// methods with identical signatures are still distinct methods.
type CompiledMethod struct {
	// Method identity
	selector      int    // selector ID
	class         *Class // defining class (nil for detached methods)
	name          string // method name (for debugging)
	IsClassMethod bool   // true if this is a class-side method

	// Method signature
	Params []Type
	Return Type
}

// NewMethod creates a detached method with the given signature. Install it
// with Class.AddMethod or Class.AddClassMethod to give it an owner.
func NewMethod(name string, ret Type, params ...Type) *CompiledMethod {
	return &CompiledMethod{
		selector: -1,
		name:     name,
		Params:   params,
		Return:   ret,
	}
}

// Name returns the method name.
func (m *CompiledMethod) Name() string {
	return m.name
}

// Selector returns the selector ID, or -1 if the method was never installed.
func (m *CompiledMethod) Selector() int {
	return m.selector
}

// Class returns the defining class.
func (m *CompiledMethod) Class() *Class {
	return m.class
}

// Arity returns the number of arguments, not counting a receiver.
func (m *CompiledMethod) Arity() int {
	return len(m.Params)
}

// IsStatic reports whether the method is callable without a receiver.
// A nil method is not static.
func (m *CompiledMethod) IsStatic() bool {
	return m != nil && m.IsClassMethod
}

// ParamTypes returns the declared parameter types.
func (m *CompiledMethod) ParamTypes() []Type {
	return m.Params
}

// ReturnType returns the declared return type.
func (m *CompiledMethod) ReturnType() Type {
	return m.Return
}

// FullName returns Class>>name for instance-side methods and
// Class class>>name for class-side methods, followed by the signature.
func (m *CompiledMethod) FullName() string {
	var sb strings.Builder
	sb.WriteString(m.String())
	sb.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") ")
	sb.WriteString(m.Return.String())
	return sb.String()
}

// String returns a string representation of the method.
func (m *CompiledMethod) String() string {
	className := "?"
	if m.class != nil {
		className = m.class.FullName()
	}
	if m.IsClassMethod {
		className += " class"
	}
	return className + ">>" + m.name
}
