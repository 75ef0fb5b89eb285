package vm

// Method is the view of a method that the callback machinery needs.
// Implementations must be comparable; identity is the interface value.
type Method interface {
	// IsStatic reports whether the method is callable without a receiver.
	IsStatic() bool
	// FullName names the method and its signature for diagnostics.
	FullName() string
	ParamTypes() []Type
	ReturnType() Type
}

var _ Method = (*CompiledMethod)(nil)
