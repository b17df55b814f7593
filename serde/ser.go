package serde

// Serializer receives a value shape by shape. A data format implements it;
// the driver (Serialize) or a Serializable type calls exactly one method per
// value.
//
// Values handed to nested methods are passed as any and serialized with
// Serialize, so they may be plain Go values, Serializable implementations
// or values wrapped with Of to keep their static type.
type Serializer interface {
	SerializeBool(v bool) error
	SerializeInt8(v int8) error
	SerializeInt16(v int16) error
	SerializeInt32(v int32) error
	SerializeInt64(v int64) error
	SerializeInt128(v Int128) error
	SerializeUint8(v uint8) error
	SerializeUint16(v uint16) error
	SerializeUint32(v uint32) error
	SerializeUint64(v uint64) error
	SerializeUint128(v Uint128) error
	SerializeFloat32(v float32) error
	SerializeFloat64(v float64) error
	SerializeChar(v rune) error
	SerializeString(v string) error
	SerializeBytes(v []byte) error

	SerializeNone() error
	SerializeSome(v any) error
	SerializeUnit() error
	SerializeUnitStruct(name string) error
	SerializeUnitVariant(name string, index uint32, variant string) error
	SerializeNewtypeStruct(name string, v any) error
	SerializeNewtypeVariant(name string, index uint32, variant string, v any) error

	// length is -1 when unknown.
	SerializeSeq(length int) (SerializeSeq, error)
	SerializeTuple(length int) (SerializeSeq, error)
	SerializeTupleStruct(name string, length int) (SerializeSeq, error)
	SerializeTupleVariant(name string, index uint32, variant string, length int) (SerializeSeq, error)
	SerializeMap(length int) (SerializeMap, error)
	SerializeStruct(name string, length int) (SerializeStruct, error)
	SerializeStructVariant(name string, index uint32, variant string, length int) (SerializeStruct, error)
}

// SerializeSeq receives the elements of a sequence, tuple or tuple variant.
type SerializeSeq interface {
	SerializeElement(v any) error
	End() error
}

// SerializeMap receives alternating keys and values.
type SerializeMap interface {
	SerializeKey(k any) error
	SerializeValue(v any) error
	End() error
}

// SerializeStruct receives named fields in declaration order.
type SerializeStruct interface {
	SerializeField(key string, v any) error
	// SkipField reports a field left out, e.g. an empty omitempty field.
	SkipField(key string) error
	End() error
}

// Serializable is implemented by types that drive a Serializer themselves.
type Serializable interface {
	Serialize(s Serializer) error
}
