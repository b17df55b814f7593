package witvalue

import (
	"fmt"
	"math/bits"
	"reflect"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde"
	"github.com/wippyai/hostserde/witvalue/internal/coerce"
)

// Value pairs a lifted value with its WIT type.
type Value struct {
	Type wit.Type
	V    any
}

// Serialize writes V as Type describes it.
func (v Value) Serialize(s serde.Serializer) error {
	return encode(s, v.Type, v.V)
}

func mismatch(t wit.Type, v any) error {
	return errors.TypeMismatch(errors.PhaseEncode, nil, KindName(t), fmt.Sprintf("%T", v))
}

func encode(s serde.Serializer, t wit.Type, v any) error {
	switch t := t.(type) {
	case wit.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(t, v)
		}
		return s.SerializeBool(b)
	case wit.U8, wit.U16, wit.U32, wit.U64:
		return encodeUint(s, t, v)
	case wit.S8, wit.S16, wit.S32, wit.S64:
		return encodeInt(s, t, v)
	case wit.F32:
		f, ok := coerce.Float(v)
		if !ok {
			return mismatch(t, v)
		}
		return s.SerializeFloat32(float32(f))
	case wit.F64:
		f, ok := coerce.Float(v)
		if !ok {
			return mismatch(t, v)
		}
		return s.SerializeFloat64(f)
	case wit.Char:
		switch c := v.(type) {
		case rune:
			return s.SerializeChar(c)
		case string:
			r := []rune(c)
			if len(r) == 1 {
				return s.SerializeChar(r[0])
			}
		}
		return mismatch(t, v)
	case wit.String:
		str, ok := v.(string)
		if !ok {
			return mismatch(t, v)
		}
		return s.SerializeString(str)
	case *wit.TypeDef:
		return encodeDef(s, t, v)
	}
	return errors.Unsupported(errors.PhaseEncode, "WIT type "+KindName(t))
}

func encodeUint(s serde.Serializer, t wit.Type, v any) error {
	width := bitWidth(t)
	u, ok := coerce.Uint(v, width)
	if !ok {
		return mismatch(t, v)
	}
	switch width {
	case 8:
		return s.SerializeUint8(uint8(u))
	case 16:
		return s.SerializeUint16(uint16(u))
	case 32:
		return s.SerializeUint32(uint32(u))
	}
	return s.SerializeUint64(u)
}

func encodeInt(s serde.Serializer, t wit.Type, v any) error {
	width := bitWidth(t)
	i, ok := coerce.Int(v, width)
	if !ok {
		return mismatch(t, v)
	}
	switch width {
	case 8:
		return s.SerializeInt8(int8(i))
	case 16:
		return s.SerializeInt16(int16(i))
	case 32:
		return s.SerializeInt32(int32(i))
	}
	return s.SerializeInt64(i)
}

func encodeDef(s serde.Serializer, td *wit.TypeDef, v any) error {
	name := defName(td)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch(td, v)
		}
		st, err := s.SerializeStruct(name, len(kind.Fields))
		if err != nil {
			return err
		}
		for _, f := range kind.Fields {
			if err := st.SerializeField(f.Name, Value{Type: f.Type, V: m[f.Name]}); err != nil {
				return err
			}
		}
		return st.End()

	case *wit.List:
		if _, isByte := kind.Type.(wit.U8); isByte {
			if b, ok := v.([]byte); ok {
				return s.SerializeBytes(b)
			}
		}
		return encodeElements(s, td, kind.Type, nil, v)

	case *wit.Tuple:
		return encodeElements(s, td, nil, kind.Types, v)

	case *wit.Option:
		if v == nil {
			return s.SerializeNone()
		}
		return s.SerializeSome(Value{Type: kind.Type, V: v})

	case *wit.Enum:
		idx, ok := coerce.Uint(v, 32)
		if !ok {
			return mismatch(td, v)
		}
		if idx >= uint64(len(kind.Cases)) {
			return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("enum case %d out of range (%d cases)", idx, len(kind.Cases)))
		}
		return s.SerializeUnitVariant(name, uint32(idx), kind.Cases[idx].Name)

	case *wit.Flags:
		mask, ok := coerce.Uint(v, 64)
		if !ok {
			return mismatch(td, v)
		}
		if len(kind.Flags) < 64 && mask>>len(kind.Flags) != 0 {
			return errors.InvalidData(errors.PhaseEncode, nil, fmt.Sprintf("flags bitmask %#x sets undeclared bits", mask))
		}
		seq, err := s.SerializeSeq(bits.OnesCount64(mask))
		if err != nil {
			return err
		}
		for i, f := range kind.Flags {
			if mask&(1<<i) == 0 {
				continue
			}
			if err := seq.SerializeElement(f.Name); err != nil {
				return err
			}
		}
		return seq.End()

	case *wit.Variant:
		cases := make([]variantCase, len(kind.Cases))
		for i, c := range kind.Cases {
			cases[i] = variantCase{name: c.Name, typ: c.Type}
		}
		return encodeCase(s, td, name, cases, v)

	case *wit.Result:
		return encodeCase(s, td, name, resultCases(kind), v)

	case *wit.Own, *wit.Borrow:
		h, ok := coerce.Uint(v, 32)
		if !ok {
			return mismatch(td, v)
		}
		return s.SerializeUint32(uint32(h))

	case wit.Type:
		return encode(s, kind, v)
	}
	return errors.Unsupported(errors.PhaseEncode, "WIT type "+KindName(td))
}

// encodeElements writes a list (elem set) or a tuple (types set).
func encodeElements(s serde.Serializer, td *wit.TypeDef, elem wit.Type, types []wit.Type, v any) error {
	rv := reflect.ValueOf(v)
	n := 0
	switch {
	case v == nil && types == nil:
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		n = rv.Len()
	default:
		return mismatch(td, v)
	}

	var seq serde.SerializeSeq
	var err error
	if types != nil {
		if n != len(types) {
			return errors.InvalidLength(errors.PhaseEncode, nil, n, fmt.Sprintf("tuple of %d elements", len(types)))
		}
		seq, err = s.SerializeTuple(n)
	} else {
		seq, err = s.SerializeSeq(n)
	}
	if err != nil {
		return err
	}
	for i := range n {
		t := elem
		if types != nil {
			t = types[i]
		}
		if err := seq.SerializeElement(Value{Type: t, V: rv.Index(i).Interface()}); err != nil {
			return err
		}
	}
	return seq.End()
}

type variantCase struct {
	typ  wit.Type
	name string
}

func resultCases(r *wit.Result) []variantCase {
	return []variantCase{{name: "ok", typ: r.OK}, {name: "err", typ: r.Err}}
}

func encodeCase(s serde.Serializer, td *wit.TypeDef, name string, cases []variantCase, v any) error {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return mismatch(td, v)
	}
	for i, c := range cases {
		payload, found := m[c.name]
		if !found {
			continue
		}
		if c.typ == nil {
			return s.SerializeUnitVariant(name, uint32(i), c.name)
		}
		return s.SerializeNewtypeVariant(name, uint32(i), c.name, Value{Type: c.typ, V: payload})
	}
	return errors.InvalidData(errors.PhaseEncode, nil, "value names no case of "+KindName(td))
}

func bitWidth(t wit.Type) int {
	switch t.(type) {
	case wit.U8, wit.S8:
		return 8
	case wit.U16, wit.S16:
		return 16
	case wit.U32, wit.S32:
		return 32
	}
	return 64
}

func defName(td *wit.TypeDef) string {
	if td.Name != nil {
		return *td.Name
	}
	return KindName(td)
}

// KindName returns the WIT keyword for t, e.g. "u32" or "record".
func KindName(t wit.Type) string {
	switch t := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case wit.S8:
		return "s8"
	case wit.S16:
		return "s16"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.Record:
			return "record"
		case *wit.List:
			return "list"
		case *wit.Tuple:
			return "tuple"
		case *wit.Option:
			return "option"
		case *wit.Result:
			return "result"
		case *wit.Variant:
			return "variant"
		case *wit.Enum:
			return "enum"
		case *wit.Flags:
			return "flags"
		case *wit.Own:
			return "own"
		case *wit.Borrow:
			return "borrow"
		case wit.Type:
			return KindName(kind)
		}
	}
	return fmt.Sprintf("%T", t)
}
