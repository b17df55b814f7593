package serde

// Deserializer answers shape requests. Each method states what the caller
// wants and hands the decoded data to the visitor; DeserializeAny lets the
// format decide from the input itself.
type Deserializer interface {
	DeserializeAny(v Visitor) error
	DeserializeBool(v Visitor) error
	DeserializeInt8(v Visitor) error
	DeserializeInt16(v Visitor) error
	DeserializeInt32(v Visitor) error
	DeserializeInt64(v Visitor) error
	DeserializeInt128(v Visitor) error
	DeserializeUint8(v Visitor) error
	DeserializeUint16(v Visitor) error
	DeserializeUint32(v Visitor) error
	DeserializeUint64(v Visitor) error
	DeserializeUint128(v Visitor) error
	DeserializeFloat32(v Visitor) error
	DeserializeFloat64(v Visitor) error
	DeserializeChar(v Visitor) error
	DeserializeString(v Visitor) error
	DeserializeBytes(v Visitor) error
	DeserializeOption(v Visitor) error
	DeserializeUnit(v Visitor) error
	DeserializeUnitStruct(name string, v Visitor) error
	DeserializeNewtypeStruct(name string, v Visitor) error
	DeserializeSeq(v Visitor) error
	DeserializeTuple(length int, v Visitor) error
	DeserializeTupleStruct(name string, length int, v Visitor) error
	DeserializeMap(v Visitor) error
	DeserializeStruct(name string, fields []string, v Visitor) error
	DeserializeEnum(name string, variants []string, v Visitor) error
	DeserializeIdentifier(v Visitor) error
	DeserializeIgnoredAny(v Visitor) error
}

// Visitor receives whatever a Deserializer found. Implementations embed
// Expect and override the methods for the inputs they accept.
type Visitor interface {
	Expecting() string
	VisitBool(v bool) error
	VisitInt64(v int64) error
	VisitUint64(v uint64) error
	VisitInt128(v Int128) error
	VisitUint128(v Uint128) error
	VisitFloat64(v float64) error
	VisitChar(v rune) error
	VisitString(v string) error
	// VisitBytes owns b.
	VisitBytes(b []byte) error
	VisitNone() error
	VisitSome(d Deserializer) error
	VisitUnit() error
	VisitNewtype(d Deserializer) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error
	VisitEnum(a EnumAccess) error
}

// Seed decodes one value out of the given deserializer.
type Seed func(d Deserializer) error

// SeqAccess walks the elements of a sequence.
type SeqAccess interface {
	// NextElement runs seed on the next element; false means exhausted.
	NextElement(seed Seed) (bool, error)
	// SizeHint returns the remaining length, or -1 when unknown.
	SizeHint() int
}

// MapAccess walks key/value pairs. Every NextValue must follow a NextKey
// that returned true.
type MapAccess interface {
	NextKey(seed Seed) (bool, error)
	NextValue(seed Seed) error
	SizeHint() int
}

// EnumAccess exposes the variant identifier of an enum.
type EnumAccess interface {
	// Variant runs seed on the identifier and returns access to the payload.
	Variant(seed Seed) (VariantAccess, error)
}

// VariantAccess decodes the payload once the variant is known.
type VariantAccess interface {
	UnitVariant() error
	NewtypeVariant(seed Seed) error
	TupleVariant(length int, v Visitor) error
	StructVariant(fields []string, v Visitor) error
}

// Deserializable is implemented by pointer types that read themselves from
// a Deserializer.
type Deserializable interface {
	Deserialize(d Deserializer) error
}
