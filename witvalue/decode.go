package witvalue

import (
	"fmt"
	"slices"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde"
)

// Decode reads a value of type t from d and returns it in lifted form.
func Decode(d serde.Deserializer, t wit.Type) (any, error) {
	switch t := t.(type) {
	case wit.Bool:
		return serde.DeserializeAs[bool](d)
	case wit.U8:
		return serde.DeserializeAs[uint8](d)
	case wit.U16:
		return serde.DeserializeAs[uint16](d)
	case wit.U32:
		return serde.DeserializeAs[uint32](d)
	case wit.U64:
		return serde.DeserializeAs[uint64](d)
	case wit.S8:
		return serde.DeserializeAs[int8](d)
	case wit.S16:
		return serde.DeserializeAs[int16](d)
	case wit.S32:
		return serde.DeserializeAs[int32](d)
	case wit.S64:
		return serde.DeserializeAs[int64](d)
	case wit.F32:
		return serde.DeserializeAs[float32](d)
	case wit.F64:
		return serde.DeserializeAs[float64](d)
	case wit.Char:
		c, err := serde.DeserializeAs[serde.Char](d)
		return rune(c), err
	case wit.String:
		return serde.DeserializeAs[string](d)
	case *wit.TypeDef:
		return decodeDef(d, t)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "WIT type "+KindName(t))
}

// DecodeValue is Decode returning the result paired with its type.
func DecodeValue(d serde.Deserializer, t wit.Type) (Value, error) {
	v, err := Decode(d, t)
	return Value{Type: t, V: v}, err
}

func into(t wit.Type, out *any) serde.Seed {
	return func(d serde.Deserializer) error {
		v, err := Decode(d, t)
		*out = v
		return err
	}
}

func decodeDef(d serde.Deserializer, td *wit.TypeDef) (any, error) {
	name := defName(td)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		v := &recordVisitor{Expect: serde.Expect("record " + name), fields: kind.Fields}
		names := make([]string, len(kind.Fields))
		for i, f := range kind.Fields {
			names[i] = f.Name
		}
		err := d.DeserializeStruct(name, names, v)
		return v.out, err

	case *wit.List:
		if _, isByte := kind.Type.(wit.U8); isByte {
			v := &bytesVisitor{Expect: "list<u8>"}
			err := d.DeserializeBytes(v)
			return v.out, err
		}
		v := &elementsVisitor{Expect: "list", elem: kind.Type}
		err := d.DeserializeSeq(v)
		return v.out, err

	case *wit.Tuple:
		v := &elementsVisitor{
			Expect: serde.Expect(fmt.Sprintf("tuple of %d elements", len(kind.Types))),
			types:  kind.Types,
		}
		err := d.DeserializeTuple(len(kind.Types), v)
		return v.out, err

	case *wit.Option:
		v := &optionVisitor{Expect: "option", inner: kind.Type}
		err := d.DeserializeOption(v)
		return v.out, err

	case *wit.Enum:
		cases := make([]variantCase, len(kind.Cases))
		for i, c := range kind.Cases {
			cases[i] = variantCase{name: c.Name}
		}
		v := &caseVisitor{Expect: "enum", enum: name, cases: cases, index: true}
		err := d.DeserializeEnum(name, caseNames(cases), v)
		return v.out, err

	case *wit.Flags:
		v := &flagsVisitor{Expect: "list of flag names", flags: kind.Flags}
		err := d.DeserializeSeq(v)
		return v.out, err

	case *wit.Variant:
		cases := make([]variantCase, len(kind.Cases))
		for i, c := range kind.Cases {
			cases[i] = variantCase{name: c.Name, typ: c.Type}
		}
		v := &caseVisitor{Expect: "variant", enum: name, cases: cases}
		err := d.DeserializeEnum(name, caseNames(cases), v)
		return v.out, err

	case *wit.Result:
		cases := resultCases(kind)
		v := &caseVisitor{Expect: "result", enum: name, cases: cases}
		err := d.DeserializeEnum(name, caseNames(cases), v)
		return v.out, err

	case *wit.Own, *wit.Borrow:
		return serde.DeserializeAs[uint32](d)

	case wit.Type:
		return Decode(d, kind)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "WIT type "+KindName(td))
}

func caseNames(cases []variantCase) []string {
	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.name
	}
	return names
}

func isOption(t wit.Type) bool {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return false
	}
	_, ok = td.Kind.(*wit.Option)
	return ok
}

type recordVisitor struct {
	serde.Expect
	out    map[string]any
	fields []wit.Field
}

func (v *recordVisitor) VisitMap(a serde.MapAccess) error {
	v.out = make(map[string]any, len(v.fields))
	for {
		var key string
		ok, err := a.NextKey(func(d serde.Deserializer) error {
			var err error
			key, err = serde.DeserializeAs[string](d)
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		i := slices.IndexFunc(v.fields, func(f wit.Field) bool { return f.Name == key })
		if i < 0 {
			if err := a.NextValue(serde.Ignore); err != nil {
				return err
			}
			continue
		}
		if _, dup := v.out[key]; dup {
			return serde.Custom("duplicate field `%s`", key)
		}
		var val any
		if err := a.NextValue(into(v.fields[i].Type, &val)); err != nil {
			return err
		}
		v.out[key] = val
	}
	for _, f := range v.fields {
		if _, ok := v.out[f.Name]; ok {
			continue
		}
		if !isOption(f.Type) {
			return serde.MissingField(f.Name)
		}
		v.out[f.Name] = nil
	}
	return nil
}

func (v *recordVisitor) VisitSeq(a serde.SeqAccess) error {
	v.out = make(map[string]any, len(v.fields))
	for i, f := range v.fields {
		var val any
		ok, err := a.NextElement(into(f.Type, &val))
		if err != nil {
			return err
		}
		if !ok {
			return serde.InvalidLength(i, fmt.Sprintf("record with %d fields", len(v.fields)))
		}
		v.out[f.Name] = val
	}
	return rejectTrailing(a, len(v.fields), fmt.Sprintf("record with %d fields", len(v.fields)))
}

func rejectTrailing(a serde.SeqAccess, n int, exp string) error {
	more, err := a.NextElement(serde.Ignore)
	if err != nil {
		return err
	}
	if more {
		return serde.InvalidLength(n+1, exp)
	}
	return nil
}

type bytesVisitor struct {
	serde.Expect
	out []byte
}

func (v *bytesVisitor) VisitBytes(b []byte) error {
	v.out = b
	return nil
}

func (v *bytesVisitor) VisitSeq(a serde.SeqAccess) error {
	v.out = make([]byte, 0, max(a.SizeHint(), 0))
	for {
		var b uint8
		ok, err := a.NextElement(func(d serde.Deserializer) error {
			var err error
			b, err = serde.DeserializeAs[uint8](d)
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		v.out = append(v.out, b)
	}
}

// elementsVisitor reads a list when elem is set and a tuple otherwise.
type elementsVisitor struct {
	serde.Expect
	elem  wit.Type
	out   []any
	types []wit.Type
}

func (v *elementsVisitor) VisitSeq(a serde.SeqAccess) error {
	if v.elem != nil {
		v.out = make([]any, 0, max(a.SizeHint(), 0))
		for {
			var val any
			ok, err := a.NextElement(into(v.elem, &val))
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			v.out = append(v.out, val)
		}
	}
	v.out = make([]any, len(v.types))
	for i, t := range v.types {
		ok, err := a.NextElement(into(t, &v.out[i]))
		if err != nil {
			return err
		}
		if !ok {
			return serde.InvalidLength(i, v.Expecting())
		}
	}
	return rejectTrailing(a, len(v.types), v.Expecting())
}

type optionVisitor struct {
	serde.Expect
	inner wit.Type
	out   any
}

func (v *optionVisitor) VisitNone() error { return nil }
func (v *optionVisitor) VisitUnit() error { return nil }

func (v *optionVisitor) VisitSome(d serde.Deserializer) error {
	return into(v.inner, &v.out)(d)
}

type flagsVisitor struct {
	serde.Expect
	flags []wit.Flag
	out   uint64
}

func (v *flagsVisitor) VisitSeq(a serde.SeqAccess) error {
	for {
		var name string
		ok, err := a.NextElement(func(d serde.Deserializer) error {
			var err error
			name, err = serde.DeserializeAs[string](d)
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		i := slices.IndexFunc(v.flags, func(f wit.Flag) bool { return f.Name == name })
		if i < 0 {
			return serde.Custom("unknown flag `%s`", name)
		}
		v.out |= 1 << i
	}
}

// caseVisitor reads variants, results and enums. Enums yield the case
// index; the others a one-entry map from case name to payload.
type caseVisitor struct {
	serde.Expect
	out   any
	enum  string
	cases []variantCase
	index bool
}

func (v *caseVisitor) VisitEnum(a serde.EnumAccess) error {
	var name string
	va, err := a.Variant(func(d serde.Deserializer) error {
		var err error
		name, err = serde.DeserializeAs[string](d)
		return err
	})
	if err != nil {
		return err
	}
	i := slices.IndexFunc(v.cases, func(c variantCase) bool { return c.name == name })
	if i < 0 {
		return serde.UnknownVariant(name, v.enum, caseNames(v.cases))
	}
	c := v.cases[i]
	if c.typ == nil {
		if err := va.UnitVariant(); err != nil {
			return err
		}
		if v.index {
			v.out = uint32(i)
		} else {
			v.out = map[string]any{c.name: nil}
		}
		return nil
	}
	var payload any
	if err := va.NewtypeVariant(into(c.typ, &payload)); err != nil {
		return err
	}
	v.out = map[string]any{c.name: payload}
	return nil
}
