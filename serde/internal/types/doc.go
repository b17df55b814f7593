// Package types defines the compiled type plans used by the serde driver.
//
// A CompiledType records, once per Go type, which serialization shape the
// type maps to and the resolved struct fields (names from tags, index paths
// through embedded structs, omitempty and optional flags), so the driver does
// not re-read struct tags on hot paths.
//
// This package is internal to serde.
package types
