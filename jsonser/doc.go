// Package jsonser is a serde.Serializer that writes JSON text directly.
//
// Its output is the JSON a host would produce by stringifying the value the
// transcoder Encoder builds with maps encoded as objects: None and unit
// members are dropped from objects and become null in arrays, object keys
// follow host property order, and 64/128-bit integers outside ±(2^53-1) are
// rejected. Byte slices are written as arrays of numbers.
//
// It serves as the compatibility reference for the Encoder and as a fast
// path when only JSON text is needed:
//
//	b, err := jsonser.Marshal(order)
package jsonser
