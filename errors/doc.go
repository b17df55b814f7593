// Package errors provides structured error types for host value marshaling.
//
// Errors are categorized by Phase (which direction failed) and Kind (error category).
// The Error type carries the path of the failing value, the expected shape, the
// observed host kind and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("user", "age").
//		GoType("u32").
//		HostType("string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseDecode, path, "a sequence", "number")
//	err := errors.InvalidLength(errors.PhaseDecode, path, 2, "1")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
