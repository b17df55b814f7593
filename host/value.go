package host

import (
	"math/big"
	"strconv"
)

// Kind is the host-level type tag of a value. Null has its own kind;
// every collection is KindObject.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindBigInt
	KindObject
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindBigInt:    "bigint",
	KindObject:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a dynamic host value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	hostValue()
}

type undefinedValue struct{}
type nullValue struct{}

var (
	// Undefined is the host's missing-value sentinel.
	Undefined Value = undefinedValue{}
	// Null is the host's explicit null.
	Null Value = nullValue{}
)

func (undefinedValue) Kind() Kind { return KindUndefined }
func (undefinedValue) hostValue() {}
func (nullValue) Kind() Kind      { return KindNull }
func (nullValue) hostValue()      {}

// Bool is a host boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBoolean }
func (Bool) hostValue() {}

// Number is a host double-precision number.
type Number float64

func (Number) Kind() Kind { return KindNumber }
func (Number) hostValue() {}

// String is a host string.
type String string

func (String) Kind() Kind { return KindString }
func (String) hostValue() {}

// BigInt is an arbitrary-precision host integer. The zero value is 0n.
type BigInt struct {
	v *big.Int
}

// NewBigInt copies x into a host bigint.
func NewBigInt(x *big.Int) BigInt {
	return BigInt{v: new(big.Int).Set(x)}
}

func BigIntFromInt64(i int64) BigInt {
	return BigInt{v: big.NewInt(i)}
}

func BigIntFromUint64(u uint64) BigInt {
	return BigInt{v: new(big.Int).SetUint64(u)}
}

func (BigInt) Kind() Kind { return KindBigInt }
func (BigInt) hostValue() {}

// Int returns a copy of the integer.
func (b BigInt) Int() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.v)
}

func (b BigInt) Sign() int {
	if b.v == nil {
		return 0
	}
	return b.v.Sign()
}

// Int64 reports the value as int64 when it fits.
func (b BigInt) Int64() (int64, bool) {
	if b.v == nil {
		return 0, true
	}
	if !b.v.IsInt64() {
		return 0, false
	}
	return b.v.Int64(), true
}

// Uint64 reports the value as uint64 when it fits.
func (b BigInt) Uint64() (uint64, bool) {
	if b.v == nil {
		return 0, true
	}
	if !b.v.IsUint64() {
		return 0, false
	}
	return b.v.Uint64(), true
}

func (b BigInt) String() string {
	if b.v == nil {
		return "0"
	}
	return b.v.String()
}

// Describe renders a short description of v for diagnostics,
// e.g. `number 1.5`, `string "a"` or `Map`.
func Describe(v Value) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case undefinedValue, nullValue:
		return v.Kind().String()
	case Bool:
		return "boolean " + strconv.FormatBool(bool(x))
	case Number:
		return "number " + FormatNumber(float64(x))
	case String:
		s := string(x)
		if len(s) > 32 {
			s = s[:32] + "..."
		}
		return "string " + strconv.Quote(s)
	case BigInt:
		return "bigint " + x.String() + "n"
	case *Array:
		return "array"
	case *Map:
		return "Map"
	case *Set:
		return "Set"
	case *Uint8Array:
		return "Uint8Array"
	case *ArrayBuffer:
		return "ArrayBuffer"
	case *Object:
		if x.iter != nil {
			return "iterable object"
		}
		if x.class != "" && x.class != "Object" {
			return x.class
		}
		return "object"
	}
	return "unknown"
}

// TypeOf returns the host typeof string of v.
func TypeOf(v Value) string {
	if v == nil {
		return "undefined"
	}
	if v.Kind() == KindNull {
		return "object"
	}
	return v.Kind().String()
}

func normalize(v Value) Value {
	if v == nil {
		return Undefined
	}
	return v
}
