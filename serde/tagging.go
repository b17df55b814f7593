package serde

import (
	"reflect"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde/internal/types"
	"go.uber.org/zap"
)

// serializeEnum writes the variant held in dyn, the dynamic value of an
// enum interface, using the enum's tagging convention.
func serializeEnum(s Serializer, e *Enum, dyn reflect.Value) error {
	idx, ok := e.byType[dyn.Type()]
	if !ok {
		return errors.New(errors.PhaseEncode, errors.KindUnknownVariant).
			GoType(e.Name).
			Detail("type %s is not a variant of enum %s", dyn.Type(), e.Name).
			Build()
	}
	v := e.Variants[idx]
	payload := dyn
	if payload.Kind() == reflect.Pointer {
		if payload.IsNil() {
			return errors.Custom(errors.PhaseEncode, "nil "+dyn.Type().String()+" held by enum "+e.Name)
		}
		payload = payload.Elem()
	}
	ct, err := e.payloadPlan(idx)
	if err != nil {
		return err
	}
	index := uint32(idx)

	switch e.Tagging.Mode {
	case TagExternal:
		switch v.Kind {
		case VariantUnit:
			return s.SerializeUnitVariant(e.Name, index, v.Name)
		case VariantNewtype:
			return s.SerializeNewtypeVariant(e.Name, index, v.Name, reflected{rv: payload, ct: ct})
		case VariantTuple:
			seq, err := s.SerializeTupleVariant(e.Name, index, v.Name, len(ct.Fields))
			if err != nil {
				return err
			}
			return serializeTupleFields(seq, payload, ct)
		default:
			st, err := s.SerializeStructVariant(e.Name, index, v.Name, countFields(payload, ct))
			if err != nil {
				return err
			}
			return serializeFields(st, payload, ct)
		}

	case TagInternal:
		tag := e.Tagging.Tag
		switch v.Kind {
		case VariantUnit:
			st, err := s.SerializeStruct(e.Name, 1)
			if err != nil {
				return err
			}
			if err := st.SerializeField(tag, v.Name); err != nil {
				return err
			}
			return st.End()
		case VariantNewtype:
			return reflected{rv: payload, ct: ct}.Serialize(&taggedSerializer{
				delegate: s,
				tag:      tag,
				enum:     e.Name,
				variant:  v.Name,
			})
		default:
			st, err := s.SerializeStruct(e.Name, countFields(payload, ct)+1)
			if err != nil {
				return err
			}
			if err := st.SerializeField(tag, v.Name); err != nil {
				return err
			}
			return serializeFields(st, payload, ct)
		}

	case TagAdjacent:
		if v.Kind == VariantUnit {
			st, err := s.SerializeStruct(e.Name, 1)
			if err != nil {
				return err
			}
			if err := st.SerializeField(e.Tagging.Tag, v.Name); err != nil {
				return err
			}
			return st.End()
		}
		st, err := s.SerializeStruct(e.Name, 2)
		if err != nil {
			return err
		}
		if err := st.SerializeField(e.Tagging.Tag, v.Name); err != nil {
			return err
		}
		if err := st.SerializeField(e.Tagging.Content, payloadOf(v, payload, ct)); err != nil {
			return err
		}
		return st.End()

	default:
		if v.Kind == VariantUnit {
			return s.SerializeUnit()
		}
		return payloadOf(v, payload, ct).Serialize(s)
	}
}

// payloadOf presents a variant payload as a standalone value.
func payloadOf(v Variant, rv reflect.Value, ct *types.CompiledType) Serializable {
	switch v.Kind {
	case VariantTuple:
		return tuplePayload{rv: rv, ct: ct}
	case VariantStruct:
		return structPayload{name: v.Name, rv: rv, ct: ct}
	}
	return reflected{rv: rv, ct: ct}
}

type tuplePayload struct {
	rv reflect.Value
	ct *types.CompiledType
}

func (p tuplePayload) Serialize(s Serializer) error {
	seq, err := s.SerializeTuple(len(p.ct.Fields))
	if err != nil {
		return err
	}
	return serializeTupleFields(seq, p.rv, p.ct)
}

type structPayload struct {
	name string
	rv   reflect.Value
	ct   *types.CompiledType
}

func (p structPayload) Serialize(s Serializer) error {
	st, err := s.SerializeStruct(p.name, countFields(p.rv, p.ct))
	if err != nil {
		return err
	}
	return serializeFields(st, p.rv, p.ct)
}

// taggedSerializer writes a newtype variant payload of an internally tagged
// enum, adding the tag entry to the payload's own struct or map. Payloads
// of any other shape cannot carry the tag and are rejected.
type taggedSerializer struct {
	delegate Serializer
	tag      string
	enum     string
	variant  string
}

func (t *taggedSerializer) bad(what string) error {
	return errors.Custom(errors.PhaseEncode,
		"cannot serialize tagged newtype variant "+t.enum+"::"+t.variant+" containing "+what)
}

func (t *taggedSerializer) tagOnly() error {
	st, err := t.delegate.SerializeStruct(t.enum, 1)
	if err != nil {
		return err
	}
	if err := st.SerializeField(t.tag, t.variant); err != nil {
		return err
	}
	return st.End()
}

func (t *taggedSerializer) SerializeBool(bool) error         { return t.bad("a boolean") }
func (t *taggedSerializer) SerializeInt8(int8) error         { return t.bad("an integer") }
func (t *taggedSerializer) SerializeInt16(int16) error       { return t.bad("an integer") }
func (t *taggedSerializer) SerializeInt32(int32) error       { return t.bad("an integer") }
func (t *taggedSerializer) SerializeInt64(int64) error       { return t.bad("an integer") }
func (t *taggedSerializer) SerializeInt128(Int128) error     { return t.bad("an integer") }
func (t *taggedSerializer) SerializeUint8(uint8) error       { return t.bad("an integer") }
func (t *taggedSerializer) SerializeUint16(uint16) error     { return t.bad("an integer") }
func (t *taggedSerializer) SerializeUint32(uint32) error     { return t.bad("an integer") }
func (t *taggedSerializer) SerializeUint64(uint64) error     { return t.bad("an integer") }
func (t *taggedSerializer) SerializeUint128(Uint128) error   { return t.bad("an integer") }
func (t *taggedSerializer) SerializeFloat32(float32) error   { return t.bad("a float") }
func (t *taggedSerializer) SerializeFloat64(float64) error   { return t.bad("a float") }
func (t *taggedSerializer) SerializeChar(rune) error         { return t.bad("a char") }
func (t *taggedSerializer) SerializeString(string) error     { return t.bad("a string") }
func (t *taggedSerializer) SerializeBytes([]byte) error      { return t.bad("a byte array") }
func (t *taggedSerializer) SerializeNone() error             { return t.bad("an optional") }
func (t *taggedSerializer) SerializeSome(any) error          { return t.bad("an optional") }
func (t *taggedSerializer) SerializeUnit() error             { return t.tagOnly() }
func (t *taggedSerializer) SerializeUnitStruct(string) error { return t.tagOnly() }

func (t *taggedSerializer) SerializeUnitVariant(string, uint32, string) error {
	return t.bad("an enum")
}

func (t *taggedSerializer) SerializeNewtypeStruct(_ string, v any) error {
	return Serialize(v, t)
}

func (t *taggedSerializer) SerializeNewtypeVariant(string, uint32, string, any) error {
	return t.bad("an enum")
}

func (t *taggedSerializer) SerializeSeq(int) (SerializeSeq, error) {
	return nil, t.bad("a sequence")
}

func (t *taggedSerializer) SerializeTuple(int) (SerializeSeq, error) {
	return nil, t.bad("a tuple")
}

func (t *taggedSerializer) SerializeTupleStruct(string, int) (SerializeSeq, error) {
	return nil, t.bad("a tuple struct")
}

func (t *taggedSerializer) SerializeTupleVariant(string, uint32, string, int) (SerializeSeq, error) {
	return nil, t.bad("an enum")
}

func (t *taggedSerializer) SerializeStructVariant(string, uint32, string, int) (SerializeStruct, error) {
	return nil, t.bad("an enum")
}

func (t *taggedSerializer) SerializeMap(length int) (SerializeMap, error) {
	if length >= 0 {
		length++
	}
	m, err := t.delegate.SerializeMap(length)
	if err != nil {
		return nil, err
	}
	if err := m.SerializeKey(t.tag); err != nil {
		return nil, err
	}
	if err := m.SerializeValue(t.variant); err != nil {
		return nil, err
	}
	return m, nil
}

func (t *taggedSerializer) SerializeStruct(name string, length int) (SerializeStruct, error) {
	st, err := t.delegate.SerializeStruct(name, length+1)
	if err != nil {
		return nil, err
	}
	if err := st.SerializeField(t.tag, t.variant); err != nil {
		return nil, err
	}
	return st, nil
}

// deserializeEnum reads a variant of e into rv, an enum interface value.
func deserializeEnum(d Deserializer, rv reflect.Value, e *Enum) error {
	switch e.Tagging.Mode {
	case TagExternal:
		return d.DeserializeEnum(e.Name, e.names, &externalVisitor{Expect: Expect("enum " + e.Name), e: e, rv: rv})
	case TagInternal:
		return deserializeInternal(d, rv, e)
	case TagAdjacent:
		fields := []string{e.Tagging.Tag, e.Tagging.Content}
		return d.DeserializeStruct(e.Name, fields, &adjacentVisitor{Expect: Expect("adjacently tagged enum " + e.Name), e: e, rv: rv})
	default:
		return deserializeUntagged(d, rv, e)
	}
}

// newVariant allocates a value of variant i's type and returns it together
// with the addressable payload inside it.
func newVariant(e *Enum, i int) (value, payload reflect.Value) {
	t := e.Variants[i].Type
	if t.Kind() == reflect.Pointer {
		p := reflect.New(t.Elem())
		return p, p.Elem()
	}
	v := reflect.New(t).Elem()
	return v, v
}

// decodeVariant reads the payload of variant i as a standalone value.
func decodeVariant(d Deserializer, e *Enum, i int) (reflect.Value, error) {
	value, payload := newVariant(e, i)
	ct, err := e.payloadPlan(i)
	if err != nil {
		return reflect.Value{}, err
	}
	switch e.Variants[i].Kind {
	case VariantUnit:
		err = d.DeserializeUnit(&unitVisitor{Expect: Expect("unit variant " + e.Variants[i].Name)})
	case VariantNewtype:
		err = deserializeValue(d, payload, ct)
	case VariantTuple:
		err = d.DeserializeTuple(len(ct.Fields), newTupleStructVisitor(payload, ct))
	default:
		err = d.DeserializeStruct(e.Variants[i].Name, ct.FieldNames(), newStructVisitor(payload, ct))
	}
	return value, err
}

// variantIdent resolves a variant identifier given by name or index.
type variantIdent struct {
	Expect
	e   *Enum
	out *int
}

func (v *variantIdent) VisitString(s string) error {
	i := v.e.variantIndex(s)
	if i < 0 {
		return UnknownVariant(s, v.e.Name, v.e.names)
	}
	*v.out = i
	return nil
}

func (v *variantIdent) VisitBytes(b []byte) error { return v.VisitString(string(b)) }

func (v *variantIdent) VisitUint64(n uint64) error {
	if n >= uint64(len(v.e.names)) {
		return InvalidValue(UnexpectedUint(n), "a variant index of enum "+v.e.Name)
	}
	*v.out = int(n)
	return nil
}

func (v *variantIdent) VisitInt64(n int64) error {
	if n < 0 {
		return InvalidValue(UnexpectedInt(n), "a variant index of enum "+v.e.Name)
	}
	return v.VisitUint64(uint64(n))
}

func variantSeed(e *Enum, out *int) Seed {
	return func(d Deserializer) error {
		return d.DeserializeIdentifier(&variantIdent{Expect: "variant identifier", e: e, out: out})
	}
}

type externalVisitor struct {
	Expect
	e  *Enum
	rv reflect.Value
}

func (v *externalVisitor) VisitEnum(a EnumAccess) error {
	var i int
	va, err := a.Variant(variantSeed(v.e, &i))
	if err != nil {
		return err
	}
	value, payload := newVariant(v.e, i)
	ct, err := v.e.payloadPlan(i)
	if err != nil {
		return err
	}
	switch v.e.Variants[i].Kind {
	case VariantUnit:
		err = va.UnitVariant()
	case VariantNewtype:
		err = va.NewtypeVariant(seedFor(payload, ct))
	case VariantTuple:
		err = va.TupleVariant(len(ct.Fields), newTupleStructVisitor(payload, ct))
	default:
		err = va.StructVariant(ct.FieldNames(), newStructVisitor(payload, ct))
	}
	if err != nil {
		return err
	}
	v.rv.Set(value)
	return nil
}

// taggedContent splits an internally tagged map into its tag and the rest.
type taggedContent struct {
	Expect
	e       *Enum
	rest    []ContentPair
	variant int
	found   bool
}

func (v *taggedContent) VisitMap(a MapAccess) error {
	tag := v.e.Tagging.Tag
	for {
		var key Content
		ok, err := a.NextKey(func(d Deserializer) error {
			var err error
			key, err = CaptureContent(d)
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if key.Kind == ContentString && key.Str == tag {
			if v.found {
				return Custom("duplicate field `%s`", tag)
			}
			if err := a.NextValue(variantSeed(v.e, &v.variant)); err != nil {
				return err
			}
			v.found = true
			continue
		}
		var val Content
		err = a.NextValue(func(d Deserializer) error {
			var err error
			val, err = CaptureContent(d)
			return err
		})
		if err != nil {
			return err
		}
		v.rest = append(v.rest, ContentPair{Key: key, Value: val})
	}
	if !v.found {
		return MissingField(tag)
	}
	return nil
}

func deserializeInternal(d Deserializer, rv reflect.Value, e *Enum) error {
	tc := &taggedContent{Expect: Expect("internally tagged enum " + e.Name), e: e}
	if err := d.DeserializeAny(tc); err != nil {
		return err
	}
	if e.Variants[tc.variant].Kind == VariantUnit {
		value, _ := newVariant(e, tc.variant)
		rv.Set(value)
		return nil
	}
	rest := Content{Kind: ContentMap, Map: tc.rest}
	value, err := decodeVariant(NewContentDeserializer(&rest), e, tc.variant)
	if err != nil {
		return err
	}
	rv.Set(value)
	return nil
}

type adjacentVisitor struct {
	Expect
	e  *Enum
	rv reflect.Value
}

func (v *adjacentVisitor) VisitMap(a MapAccess) error {
	tag, contentKey := v.e.Tagging.Tag, v.e.Tagging.Content
	var (
		variant     int
		haveTag     bool
		haveContent bool
		value       reflect.Value
		buffered    *Content
	)
	for {
		var key string
		ok, err := a.NextKey(func(d Deserializer) error {
			return d.DeserializeIdentifier(&fieldIdent{Expect: "tag or content field", out: &key})
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		switch key {
		case tag:
			if haveTag {
				return Custom("duplicate field `%s`", tag)
			}
			if err := a.NextValue(variantSeed(v.e, &variant)); err != nil {
				return err
			}
			haveTag = true
		case contentKey:
			if haveContent {
				return Custom("duplicate field `%s`", contentKey)
			}
			haveContent = true
			if haveTag {
				err = a.NextValue(func(d Deserializer) error {
					var err error
					value, err = decodeVariant(d, v.e, variant)
					return err
				})
			} else {
				err = a.NextValue(func(d Deserializer) error {
					c, err := CaptureContent(d)
					buffered = &c
					return err
				})
			}
			if err != nil {
				return err
			}
		default:
			if err := a.NextValue(Ignore); err != nil {
				return err
			}
		}
	}
	if !haveTag {
		return MissingField(tag)
	}
	switch {
	case buffered != nil:
		var err error
		if value, err = decodeVariant(NewContentDeserializer(buffered), v.e, variant); err != nil {
			return err
		}
	case !haveContent:
		if v.e.Variants[variant].Kind != VariantUnit {
			return MissingField(contentKey)
		}
		value, _ = newVariant(v.e, variant)
	}
	v.rv.Set(value)
	return nil
}

func (v *adjacentVisitor) VisitSeq(a SeqAccess) error {
	var variant int
	ok, err := a.NextElement(variantSeed(v.e, &variant))
	if err != nil {
		return err
	}
	if !ok {
		return InvalidLength(0, "adjacently tagged enum "+v.e.Name)
	}
	var value reflect.Value
	ok, err = a.NextElement(func(d Deserializer) error {
		var err error
		value, err = decodeVariant(d, v.e, variant)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		if v.e.Variants[variant].Kind != VariantUnit {
			return InvalidLength(1, "adjacently tagged enum "+v.e.Name)
		}
		value, _ = newVariant(v.e, variant)
	}
	v.rv.Set(value)
	return nil
}

func deserializeUntagged(d Deserializer, rv reflect.Value, e *Enum) error {
	c, err := CaptureContent(d)
	if err != nil {
		return err
	}
	for i := range e.Variants {
		value, err := decodeVariant(NewContentDeserializer(&c), e, i)
		if err == nil {
			rv.Set(value)
			return nil
		}
		Logger().Debug("untagged variant did not match",
			zap.String("enum", e.Name),
			zap.String("variant", e.Variants[i].Name),
			zap.Error(err))
	}
	return Custom("data did not match any variant of untagged enum %s", e.Name)
}
