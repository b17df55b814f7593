// Package serde defines the data-model contract between Go values and data
// formats, and a reflection driver that connects the two.
//
// A format implements Serializer and Deserializer. Go values reach a format
// through Serialize and Deserialize, which walk a cached per-type plan:
//
//	bool, integers, floats     scalars (int and uint are 64-bit)
//	Int128, Uint128            128-bit integers
//	Char                       a single character
//	string                     string
//	[]byte                     bytes
//	*T                         option (nil is None)
//	[]T                        sequence
//	[N]T                       tuple
//	map[K]V                    map, keys sorted when ordered
//	struct                     struct with named fields
//	struct{ _ struct{} `serde:",tuple"`; ... }        tuple struct
//	struct{ _ struct{} `serde:",transparent"`; X T }  newtype struct
//	struct{}                   unit struct
//	registered interface       enum (see RegisterEnum)
//	any                        whatever the input holds
//
// Types implementing Serializable or Deserializable take over their own
// encoding; encoding.TextMarshaler and TextUnmarshaler map to strings.
//
// Struct fields are named by the serde tag, falling back to the json tag and
// then the Go name. Options: omitempty skips empty values when writing,
// default makes a field optional when reading. Pointer fields are always
// optional; every other field is required.
//
// # Enums
//
// Go has no sum types, so an enum is an interface plus one Go type per
// variant:
//
//	type Shape interface{ isShape() }
//	type Circle struct{ R float64 }
//	type Empty struct{}
//
//	serde.MustRegisterEnum[Shape]("Shape", serde.Internal("type"),
//		serde.Struct[Circle]("Circle"),
//		serde.Unit[Empty]("Empty"),
//	)
//
// The tagging convention, External, Internal, Adjacent or Untagged, decides
// how the variant name is written. Untagged decoding buffers the input as
// Content and tries variants in declaration order; the first that decodes
// wins.
package serde
