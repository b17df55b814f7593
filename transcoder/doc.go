// Package transcoder converts between typed Go values and dynamic host
// values.
//
// The Encoder implements serde.Serializer and builds host values; the
// Decoder implements serde.Deserializer over a host value. Both are driven
// by package serde, which walks Go values by reflection or lets types
// serialize themselves.
//
// # Value Mapping
//
//	Go / serde shape        Host value
//	─────────────────────────────────────────────────────
//	bool                    Bool
//	int8..int32, uint8..32  Number
//	int64, uint64, 128-bit  Number within ±(2^53-1), else error
//	                        (BigInt with WithLargeIntsAsBigInt)
//	float32, float64        Number
//	serde.Char              one-code-point String
//	string                  String
//	[]byte                  Uint8Array (copied)
//	nil pointer, unit       Undefined
//	slice, array, tuple     Array
//	map                     Map (Object with WithMapsAsObjects)
//	struct                  Object, fields in declaration order
//	unit variant            String "Variant"
//	other variants          {"Variant": payload}
//
// Decoding accepts more than encoding produces: null and undefined both
// read as None, any iterable reads as a sequence, a map may be read from an
// iterable of [key, value] pairs or from a plain object, and integers may
// arrive as BigInt values.
//
// # Errors
//
// Failures are *errors.Error values whose Path locates the failing value,
// e.g. "items[3].price":
//
//	err := dec.Decode(v, &order)
//	var e *errors.Error
//	if errors.As(err, &e) && e.Kind == errors.KindOverflow {
//	    ...
//	}
//
// # Preserving Host Values
//
// A Preserve field holds whatever host value was found at its position and
// encodes back to that same value, for payloads the Go side passes through
// without interpreting.
package transcoder
