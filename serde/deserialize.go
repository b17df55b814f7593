package serde

import (
	"encoding"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde/internal/types"
)

// Deserialize reads a value from d into the value ptr points to.
func Deserialize(d Deserializer, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Detail("decode target must be a non-nil pointer, got %T", ptr).
			Build()
	}
	ct, err := plan(rv.Elem().Type())
	if err != nil {
		return err
	}
	return deserializeValue(d, rv.Elem(), ct)
}

// DeserializeAs reads a T from d.
func DeserializeAs[T any](d Deserializer) (T, error) {
	var out T
	err := Deserialize(d, &out)
	return out, err
}

// SeedOf returns a Seed that decodes into ptr.
func SeedOf(ptr any) Seed {
	return func(d Deserializer) error { return Deserialize(d, ptr) }
}

// seedFor decodes into an addressable value with a known plan.
func seedFor(rv reflect.Value, ct *types.CompiledType) Seed {
	return func(d Deserializer) error { return deserializeValue(d, rv, ct) }
}

func deserializeValue(d Deserializer, rv reflect.Value, ct *types.CompiledType) error {
	switch ct.Kind {
	case types.KindCustom:
		if ct.De {
			return rv.Addr().Interface().(Deserializable).Deserialize(d)
		}
		return deserializeBase(d, rv, ct)
	case types.KindText:
		if ct.De {
			return d.DeserializeString(&textVisitor{Expect: "a text value", rv: rv})
		}
		return deserializeBase(d, rv, ct)
	case types.KindBool:
		return d.DeserializeBool(&boolVisitor{Expect: "a boolean", rv: rv})
	case types.KindI8:
		return d.DeserializeInt8(&intVisitor{Expect: "i8", rv: rv})
	case types.KindI16:
		return d.DeserializeInt16(&intVisitor{Expect: "i16", rv: rv})
	case types.KindI32:
		return d.DeserializeInt32(&intVisitor{Expect: "i32", rv: rv})
	case types.KindI64:
		return d.DeserializeInt64(&intVisitor{Expect: "i64", rv: rv})
	case types.KindI128:
		return d.DeserializeInt128(&int128Visitor{Expect: "i128", rv: rv})
	case types.KindU8:
		return d.DeserializeUint8(&uintVisitor{Expect: "u8", rv: rv})
	case types.KindU16:
		return d.DeserializeUint16(&uintVisitor{Expect: "u16", rv: rv})
	case types.KindU32:
		return d.DeserializeUint32(&uintVisitor{Expect: "u32", rv: rv})
	case types.KindU64:
		return d.DeserializeUint64(&uintVisitor{Expect: "u64", rv: rv})
	case types.KindU128:
		return d.DeserializeUint128(&uint128Visitor{Expect: "u128", rv: rv})
	case types.KindF32:
		return d.DeserializeFloat32(&floatVisitor{Expect: "f32", rv: rv})
	case types.KindF64:
		return d.DeserializeFloat64(&floatVisitor{Expect: "f64", rv: rv})
	case types.KindChar:
		return d.DeserializeChar(&charVisitor{Expect: "a character", rv: rv})
	case types.KindString:
		return d.DeserializeString(&stringVisitor{Expect: "a string", rv: rv})
	case types.KindBytes:
		return d.DeserializeBytes(&bytesVisitor{Expect: "a byte array", rv: rv})
	case types.KindOption:
		return d.DeserializeOption(&optionVisitor{Expect: "option", rv: rv, ct: ct})
	case types.KindSeq:
		return d.DeserializeSeq(&seqVisitor{Expect: "a sequence", rv: rv, ct: ct})
	case types.KindTuple:
		exp := fmt.Sprintf("an array of length %d", ct.Len)
		return d.DeserializeTuple(ct.Len, &arrayVisitor{Expect: Expect(exp), rv: rv, ct: ct})
	case types.KindMap:
		return d.DeserializeMap(&mapVisitor{Expect: "a map", rv: rv, ct: ct})
	case types.KindStruct:
		return d.DeserializeStruct(ct.Name, ct.FieldNames(), newStructVisitor(rv, ct))
	case types.KindTupleStruct:
		return d.DeserializeTupleStruct(ct.Name, ct.Len, newTupleStructVisitor(rv, ct))
	case types.KindNewtype:
		return d.DeserializeNewtypeStruct(ct.Name, &newtypeVisitor{Expect: Expect("newtype struct " + ct.Name), rv: rv, ct: ct})
	case types.KindUnitStruct:
		return d.DeserializeUnitStruct(ct.Name, &unitVisitor{Expect: Expect("unit struct " + ct.Name)})
	case types.KindInterface:
		if e, ok := LookupEnum(ct.GoType); ok {
			return deserializeEnum(d, rv, e)
		}
		if ct.GoType.NumMethod() == 0 {
			return d.DeserializeAny(&anyVisitor{rv: rv})
		}
		return errors.Unsupported(errors.PhaseDecode, "decoding into interface "+ct.GoType.String()+" that is not a registered enum")
	}
	return errors.Unsupported(errors.PhaseDecode, "decoding "+ct.Kind.String())
}

func deserializeBase(d Deserializer, rv reflect.Value, ct *types.CompiledType) error {
	if ct.Base == nil {
		return errors.Unsupported(errors.PhaseDecode, "decoding "+ct.GoType.String())
	}
	return deserializeValue(d, rv, ct.Base)
}

type boolVisitor struct {
	Expect
	rv reflect.Value
}

func (v *boolVisitor) VisitBool(b bool) error {
	v.rv.SetBool(b)
	return nil
}

type intVisitor struct {
	Expect
	rv reflect.Value
}

func (v *intVisitor) VisitInt64(n int64) error {
	if v.rv.OverflowInt(n) {
		return OutOfRange(n, string(v.Expect))
	}
	v.rv.SetInt(n)
	return nil
}

func (v *intVisitor) VisitUint64(n uint64) error {
	if n > math.MaxInt64 {
		return OutOfRange(n, string(v.Expect))
	}
	return v.VisitInt64(int64(n))
}

func (v *intVisitor) VisitInt128(n Int128) error {
	if i, ok := n.Int64(); ok {
		return v.VisitInt64(i)
	}
	return OutOfRange(n.String(), string(v.Expect))
}

func (v *intVisitor) VisitUint128(n Uint128) error {
	if u, ok := n.Uint64(); ok {
		return v.VisitUint64(u)
	}
	return OutOfRange(n.String(), string(v.Expect))
}

type uintVisitor struct {
	Expect
	rv reflect.Value
}

func (v *uintVisitor) VisitUint64(n uint64) error {
	if v.rv.OverflowUint(n) {
		return OutOfRange(n, string(v.Expect))
	}
	v.rv.SetUint(n)
	return nil
}

func (v *uintVisitor) VisitInt64(n int64) error {
	if n < 0 {
		return OutOfRange(n, string(v.Expect))
	}
	return v.VisitUint64(uint64(n))
}

func (v *uintVisitor) VisitInt128(n Int128) error {
	if u, ok := n.Uint64(); ok {
		return v.VisitUint64(u)
	}
	return OutOfRange(n.String(), string(v.Expect))
}

func (v *uintVisitor) VisitUint128(n Uint128) error {
	if u, ok := n.Uint64(); ok {
		return v.VisitUint64(u)
	}
	return OutOfRange(n.String(), string(v.Expect))
}

type int128Visitor struct {
	Expect
	rv reflect.Value
}

func (v *int128Visitor) set(n Int128) error {
	v.rv.Set(reflect.ValueOf(n))
	return nil
}

func (v *int128Visitor) VisitInt64(n int64) error   { return v.set(Int128From64(n)) }
func (v *int128Visitor) VisitUint64(n uint64) error { return v.set(Int128{Lo: n}) }
func (v *int128Visitor) VisitInt128(n Int128) error { return v.set(n) }

func (v *int128Visitor) VisitUint128(n Uint128) error {
	if n.Hi>>63 != 0 {
		return OutOfRange(n.String(), "i128")
	}
	return v.set(Int128{Hi: int64(n.Hi), Lo: n.Lo})
}

type uint128Visitor struct {
	Expect
	rv reflect.Value
}

func (v *uint128Visitor) set(n Uint128) error {
	v.rv.Set(reflect.ValueOf(n))
	return nil
}

func (v *uint128Visitor) VisitUint64(n uint64) error   { return v.set(Uint128From64(n)) }
func (v *uint128Visitor) VisitUint128(n Uint128) error { return v.set(n) }

func (v *uint128Visitor) VisitInt64(n int64) error {
	if n < 0 {
		return OutOfRange(n, "u128")
	}
	return v.set(Uint128From64(uint64(n)))
}

func (v *uint128Visitor) VisitInt128(n Int128) error {
	if n.Sign() < 0 {
		return OutOfRange(n.String(), "u128")
	}
	return v.set(Uint128{Hi: uint64(n.Hi), Lo: n.Lo})
}

type floatVisitor struct {
	Expect
	rv reflect.Value
}

func (v *floatVisitor) VisitFloat64(f float64) error {
	v.rv.SetFloat(f)
	return nil
}

func (v *floatVisitor) VisitInt64(n int64) error   { return v.VisitFloat64(float64(n)) }
func (v *floatVisitor) VisitUint64(n uint64) error { return v.VisitFloat64(float64(n)) }

func (v *floatVisitor) VisitInt128(n Int128) error {
	f, _ := new(big.Float).SetInt(n.Big()).Float64()
	return v.VisitFloat64(f)
}

func (v *floatVisitor) VisitUint128(n Uint128) error {
	f, _ := new(big.Float).SetInt(n.Big()).Float64()
	return v.VisitFloat64(f)
}

type charVisitor struct {
	Expect
	rv reflect.Value
}

func (v *charVisitor) VisitChar(r rune) error {
	v.rv.SetInt(int64(r))
	return nil
}

func (v *charVisitor) VisitString(s string) error {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError && size == 1 {
		return InvalidValue(UnexpectedString(s), string(v.Expect))
	}
	return v.VisitChar(r)
}

type stringVisitor struct {
	Expect
	rv reflect.Value
}

func (v *stringVisitor) VisitString(s string) error {
	v.rv.SetString(s)
	return nil
}

func (v *stringVisitor) VisitChar(r rune) error { return v.VisitString(string(r)) }

func (v *stringVisitor) VisitBytes(b []byte) error {
	if !utf8.Valid(b) {
		return InvalidValue(UnexpectedBytes, string(v.Expect))
	}
	return v.VisitString(string(b))
}

type bytesVisitor struct {
	Expect
	rv reflect.Value
}

func (v *bytesVisitor) VisitBytes(b []byte) error {
	v.rv.SetBytes(b)
	return nil
}

func (v *bytesVisitor) VisitString(s string) error { return v.VisitBytes([]byte(s)) }

func (v *bytesVisitor) VisitSeq(a SeqAccess) error {
	out := make([]byte, 0, max(a.SizeHint(), 0))
	for {
		var b uint8
		ok, err := a.NextElement(SeedOf(&b))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = append(out, b)
	}
	return v.VisitBytes(out)
}

type textVisitor struct {
	Expect
	rv reflect.Value
}

func (v *textVisitor) VisitString(s string) error { return v.VisitBytes([]byte(s)) }

func (v *textVisitor) VisitBytes(b []byte) error {
	if err := v.rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText(b); err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindCustom, err, "unmarshal text")
	}
	return nil
}

type optionVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func (v *optionVisitor) VisitNone() error {
	v.rv.SetZero()
	return nil
}

func (v *optionVisitor) VisitUnit() error { return v.VisitNone() }

func (v *optionVisitor) VisitSome(d Deserializer) error {
	p := reflect.New(v.ct.Elem.GoType)
	if err := deserializeValue(d, p.Elem(), v.ct.Elem); err != nil {
		return err
	}
	v.rv.Set(p)
	return nil
}

// preallocLimit caps capacity taken from untrusted size hints.
const preallocLimit = 4096

type seqVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func (v *seqVisitor) VisitSeq(a SeqAccess) error {
	elemType := v.ct.Elem.GoType
	out := reflect.MakeSlice(v.ct.GoType, 0, min(max(a.SizeHint(), 0), preallocLimit))
	for {
		elem := reflect.New(elemType).Elem()
		ok, err := a.NextElement(seedFor(elem, v.ct.Elem))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, elem)
	}
	v.rv.Set(out)
	return nil
}

type arrayVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func (v *arrayVisitor) VisitSeq(a SeqAccess) error {
	for i := 0; i < v.ct.Len; i++ {
		ok, err := a.NextElement(seedFor(v.rv.Index(i), v.ct.Elem))
		if err != nil {
			return err
		}
		if !ok {
			return InvalidLength(i, string(v.Expect))
		}
	}
	return rejectTrailing(a, v.ct.Len, string(v.Expect))
}

// rejectTrailing fails when a sequence has elements beyond the n consumed.
func rejectTrailing(a SeqAccess, n int, exp string) error {
	count := n
	for {
		ok, err := a.NextElement(Ignore)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		count++
	}
	if count != n {
		return InvalidLength(count, exp)
	}
	return nil
}

type mapVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func (v *mapVisitor) VisitMap(a MapAccess) error {
	keyType, elemType := v.ct.Key.GoType, v.ct.Elem.GoType
	out := reflect.MakeMapWithSize(v.ct.GoType, min(max(a.SizeHint(), 0), preallocLimit))
	for {
		key := reflect.New(keyType).Elem()
		ok, err := a.NextKey(seedFor(key, v.ct.Key))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if keyType.Kind() == reflect.Interface && !key.IsNil() && !key.Elem().Type().Comparable() {
			return Custom("map key of type %s is not hashable", key.Elem().Type())
		}
		val := reflect.New(elemType).Elem()
		if err := a.NextValue(seedFor(val, v.ct.Elem)); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	v.rv.Set(out)
	return nil
}

type structVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func newStructVisitor(rv reflect.Value, ct *types.CompiledType) *structVisitor {
	return &structVisitor{Expect: Expect("struct " + ct.Name), rv: rv, ct: ct}
}

func (v *structVisitor) VisitMap(a MapAccess) error {
	seen := make([]bool, len(v.ct.Fields))
	for {
		var key string
		ok, err := a.NextKey(func(d Deserializer) error {
			return d.DeserializeIdentifier(&fieldIdent{Expect: "field identifier", names: v.ct.Fields, out: &key})
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		i := v.ct.FieldIndex(key)
		if i < 0 {
			if err := a.NextValue(Ignore); err != nil {
				return err
			}
			continue
		}
		if seen[i] {
			return Custom("duplicate field `%s`", key)
		}
		seen[i] = true
		f := v.ct.Fields[i]
		if err := a.NextValue(seedFor(v.rv.FieldByIndex(f.Index), f.Type)); err != nil {
			return err
		}
	}
	for i, f := range v.ct.Fields {
		if !seen[i] && !f.Optional {
			return MissingField(f.Name)
		}
	}
	return nil
}

func (v *structVisitor) VisitSeq(a SeqAccess) error {
	for i, f := range v.ct.Fields {
		ok, err := a.NextElement(seedFor(v.rv.FieldByIndex(f.Index), f.Type))
		if err != nil {
			return err
		}
		if !ok {
			for _, rest := range v.ct.Fields[i:] {
				if !rest.Optional {
					return InvalidLength(i, fmt.Sprintf("struct %s with %d elements", v.ct.Name, len(v.ct.Fields)))
				}
			}
			return nil
		}
	}
	return rejectTrailing(a, len(v.ct.Fields), fmt.Sprintf("struct %s with %d elements", v.ct.Name, len(v.ct.Fields)))
}

// fieldIdent reads a struct key, accepting a field index in place of a name.
type fieldIdent struct {
	Expect
	names []types.Field
	out   *string
}

func (f *fieldIdent) VisitString(s string) error {
	*f.out = s
	return nil
}

func (f *fieldIdent) VisitBytes(b []byte) error { return f.VisitString(string(b)) }

func (f *fieldIdent) VisitUint64(n uint64) error {
	if n < uint64(len(f.names)) {
		*f.out = f.names[n].Name
	}
	return nil
}

func (f *fieldIdent) VisitInt64(n int64) error {
	if n < 0 {
		return nil
	}
	return f.VisitUint64(uint64(n))
}

type tupleStructVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func newTupleStructVisitor(rv reflect.Value, ct *types.CompiledType) *tupleStructVisitor {
	exp := fmt.Sprintf("tuple struct %s with %d elements", ct.Name, len(ct.Fields))
	return &tupleStructVisitor{Expect: Expect(exp), rv: rv, ct: ct}
}

func (v *tupleStructVisitor) VisitSeq(a SeqAccess) error {
	for i, f := range v.ct.Fields {
		ok, err := a.NextElement(seedFor(v.rv.FieldByIndex(f.Index), f.Type))
		if err != nil {
			return err
		}
		if !ok {
			return InvalidLength(i, string(v.Expect))
		}
	}
	return rejectTrailing(a, len(v.ct.Fields), string(v.Expect))
}

type newtypeVisitor struct {
	Expect
	rv reflect.Value
	ct *types.CompiledType
}

func (v *newtypeVisitor) VisitNewtype(d Deserializer) error {
	f := v.ct.Fields[0]
	return deserializeValue(d, v.rv.FieldByIndex(f.Index), f.Type)
}

func (v *newtypeVisitor) VisitSeq(a SeqAccess) error {
	f := v.ct.Fields[0]
	ok, err := a.NextElement(seedFor(v.rv.FieldByIndex(f.Index), f.Type))
	if err != nil {
		return err
	}
	if !ok {
		return InvalidLength(0, string(v.Expect))
	}
	return rejectTrailing(a, 1, string(v.Expect))
}

type unitVisitor struct {
	Expect
}

func (*unitVisitor) VisitUnit() error { return nil }

// VisitMap accepts an empty map, which is how a unit payload looks once an
// internal tag has been removed from it.
func (v *unitVisitor) VisitMap(a MapAccess) error {
	ok, err := a.NextKey(Ignore)
	if err != nil {
		return err
	}
	if ok {
		return InvalidType(UnexpectedMap, string(v.Expect))
	}
	return nil
}

// anyVisitor builds the dynamic Go form of whatever it is given: bool,
// int64, uint64, Int128, Uint128, float64, string, []byte, []any and
// map[string]any, or map[any]any when a key is not a string.
type anyVisitor struct {
	rv reflect.Value
}

func (*anyVisitor) Expecting() string { return "any value" }

func (v *anyVisitor) set(x any) error {
	v.rv.Set(reflect.ValueOf(x))
	return nil
}

func (v *anyVisitor) VisitBool(b bool) error       { return v.set(b) }
func (v *anyVisitor) VisitInt64(n int64) error     { return v.set(n) }
func (v *anyVisitor) VisitUint64(n uint64) error   { return v.set(n) }
func (v *anyVisitor) VisitInt128(n Int128) error   { return v.set(n) }
func (v *anyVisitor) VisitUint128(n Uint128) error { return v.set(n) }
func (v *anyVisitor) VisitFloat64(f float64) error { return v.set(f) }
func (v *anyVisitor) VisitChar(r rune) error       { return v.set(string(r)) }
func (v *anyVisitor) VisitString(s string) error   { return v.set(s) }
func (v *anyVisitor) VisitBytes(b []byte) error    { return v.set(b) }

func (v *anyVisitor) VisitNone() error {
	v.rv.SetZero()
	return nil
}

func (v *anyVisitor) VisitUnit() error { return v.VisitNone() }

func (v *anyVisitor) VisitSome(d Deserializer) error {
	return d.DeserializeAny(v)
}

func (v *anyVisitor) VisitNewtype(d Deserializer) error {
	return d.DeserializeAny(v)
}

func decodeAny(d Deserializer, out *any) error {
	return d.DeserializeAny(&anyVisitor{rv: reflect.ValueOf(out).Elem()})
}

func (v *anyVisitor) VisitSeq(a SeqAccess) error {
	out := make([]any, 0, min(max(a.SizeHint(), 0), preallocLimit))
	for {
		var elem any
		ok, err := a.NextElement(func(d Deserializer) error { return decodeAny(d, &elem) })
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = append(out, elem)
	}
	return v.set(out)
}

func (v *anyVisitor) VisitMap(a MapAccess) error {
	var keys, vals []any
	allStrings := true
	for {
		var k any
		ok, err := a.NextKey(func(d Deserializer) error { return decodeAny(d, &k) })
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if _, isString := k.(string); !isString {
			allStrings = false
			if k != nil && !reflect.TypeOf(k).Comparable() {
				return Custom("map key of type %T is not hashable", k)
			}
		}
		var val any
		if err := a.NextValue(func(d Deserializer) error { return decodeAny(d, &val) }); err != nil {
			return err
		}
		keys = append(keys, k)
		vals = append(vals, val)
	}
	if allStrings {
		m := make(map[string]any, len(keys))
		for i, k := range keys {
			m[k.(string)] = vals[i]
		}
		return v.set(m)
	}
	m := make(map[any]any, len(keys))
	for i, k := range keys {
		m[k] = vals[i]
	}
	return v.set(m)
}

func (*anyVisitor) VisitEnum(EnumAccess) error {
	return InvalidType(UnexpectedEnum, "any value")
}
