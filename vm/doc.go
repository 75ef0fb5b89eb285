// Package vm holds the method metadata model that the callback machinery
// works against.
//
// This package contains:
//   - ABI-level parameter and return types
//   - Classes with instance-side and class-side method dictionaries
//   - Compiled method descriptors
//   - Selector interning
package vm
