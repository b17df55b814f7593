// Package witvalue moves WIT-typed values through serde.
//
// Values use the lifted representation produced by a component runtime:
//
//	bool, u8..u64, s8..s64, f32, f64  native Go numbers (float64 accepted)
//	char                              rune
//	string                            string
//	record                            map[string]any keyed by field name
//	list<u8>                          []byte
//	list<T>                           []any (any slice when encoding)
//	tuple                             []any
//	option<T>                         nil or the payload
//	variant, result                   map[string]any with one case key
//	enum                              uint32 case index
//	flags                             uint64 bitmask, bit i for flag i
//	own, borrow                       uint32 handle
//
// Value serializes a lifted value with any Serializer: records become
// structs, variants and results externally tagged enums, enums unit
// variants and flags a list of set flag names. Decode reverses it.
package witvalue
