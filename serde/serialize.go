package serde

import (
	"cmp"
	"encoding"
	"reflect"
	"slices"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde/internal/types"
)

// Serialize drives s with v. Serializable values serialize themselves; other
// values are walked by reflection using their cached plan.
func Serialize(v any, s Serializer) error {
	switch x := v.(type) {
	case nil:
		return s.SerializeNone()
	case Serializable:
		return x.Serialize(s)
	}
	rv := reflect.ValueOf(v)
	ct, err := plan(rv.Type())
	if err != nil {
		return err
	}
	return serializeValue(s, rv, ct)
}

// Of wraps v so that its static type T survives being passed as any. This
// matters when T is a registered enum interface.
func Of[T any](v T) Serializable {
	rv := reflect.ValueOf(&v).Elem()
	return reflected{rv: rv}
}

// reflected carries a value together with its plan through Serializer
// methods that take any.
type reflected struct {
	rv reflect.Value
	ct *types.CompiledType
}

func (r reflected) Serialize(s Serializer) error {
	ct := r.ct
	if ct == nil {
		var err error
		if ct, err = plan(r.rv.Type()); err != nil {
			return err
		}
	}
	return serializeValue(s, r.rv, ct)
}

func serializeValue(s Serializer, rv reflect.Value, ct *types.CompiledType) error {
	switch ct.Kind {
	case types.KindCustom, types.KindText:
		if ct.Ser {
			return serializeSelf(s, rv, ct.Kind)
		}
		if ct.Base == nil {
			return errors.Unsupported(errors.PhaseEncode, "serializing "+rv.Type().String())
		}
		return serializeValue(s, rv, ct.Base)
	case types.KindBool:
		return s.SerializeBool(rv.Bool())
	case types.KindI8:
		return s.SerializeInt8(int8(rv.Int()))
	case types.KindI16:
		return s.SerializeInt16(int16(rv.Int()))
	case types.KindI32:
		return s.SerializeInt32(int32(rv.Int()))
	case types.KindI64:
		return s.SerializeInt64(rv.Int())
	case types.KindI128:
		return s.SerializeInt128(rv.Interface().(Int128))
	case types.KindU8:
		return s.SerializeUint8(uint8(rv.Uint()))
	case types.KindU16:
		return s.SerializeUint16(uint16(rv.Uint()))
	case types.KindU32:
		return s.SerializeUint32(uint32(rv.Uint()))
	case types.KindU64:
		return s.SerializeUint64(rv.Uint())
	case types.KindU128:
		return s.SerializeUint128(rv.Interface().(Uint128))
	case types.KindF32:
		return s.SerializeFloat32(float32(rv.Float()))
	case types.KindF64:
		return s.SerializeFloat64(rv.Float())
	case types.KindChar:
		return s.SerializeChar(rune(rv.Int()))
	case types.KindString:
		return s.SerializeString(rv.String())
	case types.KindBytes:
		return s.SerializeBytes(rv.Bytes())
	case types.KindOption:
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return s.SerializeSome(reflected{rv: rv.Elem(), ct: ct.Elem})
	case types.KindSeq:
		n := rv.Len()
		seq, err := s.SerializeSeq(n)
		if err != nil {
			return err
		}
		return serializeElements(seq, rv, ct.Elem)
	case types.KindTuple:
		seq, err := s.SerializeTuple(ct.Len)
		if err != nil {
			return err
		}
		return serializeElements(seq, rv, ct.Elem)
	case types.KindMap:
		return serializeMap(s, rv, ct)
	case types.KindStruct:
		st, err := s.SerializeStruct(ct.Name, countFields(rv, ct))
		if err != nil {
			return err
		}
		return serializeFields(st, rv, ct)
	case types.KindTupleStruct:
		seq, err := s.SerializeTupleStruct(ct.Name, ct.Len)
		if err != nil {
			return err
		}
		return serializeTupleFields(seq, rv, ct)
	case types.KindNewtype:
		f := ct.Fields[0]
		return s.SerializeNewtypeStruct(ct.Name, reflected{rv: rv.FieldByIndex(f.Index), ct: f.Type})
	case types.KindUnitStruct:
		return s.SerializeUnitStruct(ct.Name)
	case types.KindInterface:
		if e, ok := LookupEnum(rv.Type()); ok {
			if rv.IsNil() {
				return s.SerializeNone()
			}
			return serializeEnum(s, e, rv.Elem())
		}
		if rv.IsNil() {
			return s.SerializeNone()
		}
		return Serialize(rv.Elem().Interface(), s)
	}
	return errors.Unsupported(errors.PhaseEncode, "serializing "+ct.Kind.String())
}

func serializeSelf(s Serializer, rv reflect.Value, kind types.Kind) error {
	target := rv
	if kind == types.KindCustom && !rv.Type().Implements(serializableType) ||
		kind == types.KindText && !rv.Type().Implements(textMarshalerType) {
		target = addressable(rv).Addr()
	}
	if kind == types.KindCustom {
		return target.Interface().(Serializable).Serialize(s)
	}
	text, err := target.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindCustom, err, "marshal text")
	}
	return s.SerializeString(string(text))
}

func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}
	p := reflect.New(rv.Type()).Elem()
	p.Set(rv)
	return p
}

func serializeElements(seq SerializeSeq, rv reflect.Value, elem *types.CompiledType) error {
	for i := 0; i < rv.Len(); i++ {
		if err := seq.SerializeElement(reflected{rv: rv.Index(i), ct: elem}); err != nil {
			return err
		}
	}
	return seq.End()
}

func serializeTupleFields(seq SerializeSeq, rv reflect.Value, ct *types.CompiledType) error {
	for _, f := range ct.Fields {
		if err := seq.SerializeElement(reflected{rv: rv.FieldByIndex(f.Index), ct: f.Type}); err != nil {
			return err
		}
	}
	return seq.End()
}

func countFields(rv reflect.Value, ct *types.CompiledType) int {
	n := 0
	for _, f := range ct.Fields {
		if !f.OmitEmpty || !isEmptyValue(rv.FieldByIndex(f.Index)) {
			n++
		}
	}
	return n
}

func serializeFields(st SerializeStruct, rv reflect.Value, ct *types.CompiledType) error {
	for _, f := range ct.Fields {
		fv := rv.FieldByIndex(f.Index)
		if f.OmitEmpty && isEmptyValue(fv) {
			if err := st.SkipField(f.Name); err != nil {
				return err
			}
			continue
		}
		if err := st.SerializeField(f.Name, reflected{rv: fv, ct: f.Type}); err != nil {
			return err
		}
	}
	return st.End()
}

func serializeMap(s Serializer, rv reflect.Value, ct *types.CompiledType) error {
	keys := rv.MapKeys()
	sortKeys(keys)
	m, err := s.SerializeMap(len(keys))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := m.SerializeKey(reflected{rv: k, ct: ct.Key}); err != nil {
			return err
		}
		if err := m.SerializeValue(reflected{rv: rv.MapIndex(k), ct: ct.Elem}); err != nil {
			return err
		}
	}
	return m.End()
}

// sortKeys orders map keys of ordered kinds so output is deterministic.
func sortKeys(keys []reflect.Value) {
	if len(keys) < 2 {
		return
	}
	switch keys[0].Kind() {
	case reflect.String:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	case reflect.Float32, reflect.Float64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) })
	case reflect.Bool:
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			switch {
			case a.Bool() == b.Bool():
				return 0
			case !a.Bool():
				return -1
			}
			return 1
		})
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
