// Package trampoline binds precompiled native trampolines to managed methods.
//
// A trampoline is a native-callable function compiled ahead of time for one
// signature shape. The generator emits a fixed table of them, grouped by
// shape. At run time the Registry hands out one unassigned trampoline per
// static method, the first time that method is needed as a native callback,
// and remembers the binding for the life of the process so the same pointer
// is returned on every later request.
//
// The supply is fixed. When a shape has no family, or every slot of its
// family is taken, Resolve fails; the remedy is provisioning more slots for
// that shape in the generator manifest.
package trampoline
