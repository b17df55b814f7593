// Package interchange reads host values from text documents and writes them
// as CBOR.
//
// ParseJSONC accepts JSON with comments and trailing commas. ParseYAML
// keeps mapping order: mappings whose keys are all strings become plain
// Objects and any other mapping a Map, !!binary scalars become Uint8Arrays
// and integers outside the safe range become BigInts.
//
// MarshalCBOR keeps property order, writes undefined as simple value 23,
// bigints as bignums (tags 2 and 3) and byte buffers as byte strings.
// DiagnoseCBOR renders the result in diagnostic notation.
package interchange
