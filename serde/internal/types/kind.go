package types

// Kind is the serialization shape a Go type maps to.
type Kind uint8

const (
	KindBool Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindChar
	KindString
	KindBytes
	KindOption
	KindSeq
	KindTuple
	KindMap
	KindStruct
	KindTupleStruct
	KindNewtype
	KindUnitStruct
	KindInterface
	KindCustom
	KindText
)

var kindNames = [...]string{
	KindBool:        "bool",
	KindI8:          "i8",
	KindI16:         "i16",
	KindI32:         "i32",
	KindI64:         "i64",
	KindI128:        "i128",
	KindU8:          "u8",
	KindU16:         "u16",
	KindU32:         "u32",
	KindU64:         "u64",
	KindU128:        "u128",
	KindF32:         "f32",
	KindF64:         "f64",
	KindChar:        "char",
	KindString:      "string",
	KindBytes:       "bytes",
	KindOption:      "option",
	KindSeq:         "seq",
	KindTuple:       "tuple",
	KindMap:         "map",
	KindStruct:      "struct",
	KindTupleStruct: "tuple struct",
	KindNewtype:     "newtype struct",
	KindUnitStruct:  "unit struct",
	KindInterface:   "interface",
	KindCustom:      "custom",
	KindText:        "text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindBytes
}

func (k Kind) IsSigned() bool {
	return k >= KindI8 && k <= KindI128
}

func (k Kind) IsUnsigned() bool {
	return k >= KindU8 && k <= KindU128
}

// Bits returns the width of integer and float kinds, 0 otherwise.
func (k Kind) Bits() int {
	switch k {
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32, KindF32:
		return 32
	case KindI64, KindU64, KindF64:
		return 64
	case KindI128, KindU128:
		return 128
	}
	return 0
}
