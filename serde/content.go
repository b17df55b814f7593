package serde

import (
	"slices"

	"github.com/wippyai/hostserde/errors"
)

// ContentKind identifies what a Content holds.
type ContentKind uint8

const (
	ContentUnit ContentKind = iota
	ContentBool
	ContentI64
	ContentU64
	ContentI128
	ContentU128
	ContentF64
	ContentChar
	ContentString
	ContentBytes
	ContentNone
	ContentSome
	ContentNewtype
	ContentSeq
	ContentMap
)

// Content is a format-independent buffer of one decoded value. Tagged and
// untagged enums capture their input as Content and replay it, since the
// variant is not known until the input has been inspected.
type Content struct {
	Str   string
	Bytes []byte
	Inner *Content
	Seq   []Content
	Map   []ContentPair
	I128  Int128
	U128  Uint128
	I64   int64
	U64   uint64
	F64   float64
	Char  rune
	Bool  bool
	Kind  ContentKind
}

// ContentPair is one map entry, kept in input order.
type ContentPair struct {
	Key   Content
	Value Content
}

// Describe names the content for error messages.
func (c *Content) Describe() string {
	switch c.Kind {
	case ContentBool:
		return UnexpectedBool(c.Bool)
	case ContentI64:
		return UnexpectedInt(c.I64)
	case ContentU64:
		return UnexpectedUint(c.U64)
	case ContentI128:
		return UnexpectedBigInt(c.I128)
	case ContentU128:
		return UnexpectedBigInt(c.U128)
	case ContentF64:
		return UnexpectedFloat(c.F64)
	case ContentChar:
		return UnexpectedChar(c.Char)
	case ContentString:
		return UnexpectedString(c.Str)
	case ContentBytes:
		return UnexpectedBytes
	case ContentNone, ContentSome:
		return UnexpectedOption
	case ContentNewtype:
		return UnexpectedNewtype
	case ContentSeq:
		return UnexpectedSeq
	case ContentMap:
		return UnexpectedMap
	}
	return UnexpectedUnit
}

// CaptureContent reads one value from d into a Content.
func CaptureContent(d Deserializer) (Content, error) {
	var c Content
	err := d.DeserializeAny(&contentVisitor{out: &c})
	return c, err
}

type contentVisitor struct {
	out *Content
}

func (*contentVisitor) Expecting() string { return "any value" }

func (v *contentVisitor) VisitBool(b bool) error {
	*v.out = Content{Kind: ContentBool, Bool: b}
	return nil
}

func (v *contentVisitor) VisitInt64(n int64) error {
	*v.out = Content{Kind: ContentI64, I64: n}
	return nil
}

func (v *contentVisitor) VisitUint64(n uint64) error {
	*v.out = Content{Kind: ContentU64, U64: n}
	return nil
}

func (v *contentVisitor) VisitInt128(n Int128) error {
	*v.out = Content{Kind: ContentI128, I128: n}
	return nil
}

func (v *contentVisitor) VisitUint128(n Uint128) error {
	*v.out = Content{Kind: ContentU128, U128: n}
	return nil
}

func (v *contentVisitor) VisitFloat64(f float64) error {
	*v.out = Content{Kind: ContentF64, F64: f}
	return nil
}

func (v *contentVisitor) VisitChar(r rune) error {
	*v.out = Content{Kind: ContentChar, Char: r}
	return nil
}

func (v *contentVisitor) VisitString(s string) error {
	*v.out = Content{Kind: ContentString, Str: s}
	return nil
}

func (v *contentVisitor) VisitBytes(b []byte) error {
	*v.out = Content{Kind: ContentBytes, Bytes: b}
	return nil
}

func (v *contentVisitor) VisitNone() error {
	*v.out = Content{Kind: ContentNone}
	return nil
}

func (v *contentVisitor) VisitUnit() error {
	*v.out = Content{Kind: ContentUnit}
	return nil
}

func (v *contentVisitor) VisitSome(d Deserializer) error {
	inner, err := CaptureContent(d)
	if err != nil {
		return err
	}
	*v.out = Content{Kind: ContentSome, Inner: &inner}
	return nil
}

func (v *contentVisitor) VisitNewtype(d Deserializer) error {
	inner, err := CaptureContent(d)
	if err != nil {
		return err
	}
	*v.out = Content{Kind: ContentNewtype, Inner: &inner}
	return nil
}

func (v *contentVisitor) VisitSeq(a SeqAccess) error {
	items := make([]Content, 0, max(a.SizeHint(), 0))
	for {
		var item Content
		ok, err := a.NextElement(func(d Deserializer) error {
			var err error
			item, err = CaptureContent(d)
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	*v.out = Content{Kind: ContentSeq, Seq: items}
	return nil
}

func (v *contentVisitor) VisitMap(a MapAccess) error {
	pairs := make([]ContentPair, 0, max(a.SizeHint(), 0))
	for {
		var p ContentPair
		ok, err := a.NextKey(func(d Deserializer) error {
			var err error
			p.Key, err = CaptureContent(d)
			return err
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		err = a.NextValue(func(d Deserializer) error {
			var err error
			p.Value, err = CaptureContent(d)
			return err
		})
		if err != nil {
			return err
		}
		pairs = append(pairs, p)
	}
	*v.out = Content{Kind: ContentMap, Map: pairs}
	return nil
}

func (*contentVisitor) VisitEnum(EnumAccess) error {
	return Custom("untagged and internally tagged enums do not support enum input")
}

// ContentDeserializer replays a Content. It can be read any number of times.
type ContentDeserializer struct {
	c *Content
}

func NewContentDeserializer(c *Content) *ContentDeserializer {
	return &ContentDeserializer{c: c}
}

func (cd *ContentDeserializer) DeserializeAny(v Visitor) error {
	c := cd.c
	switch c.Kind {
	case ContentBool:
		return v.VisitBool(c.Bool)
	case ContentI64:
		return v.VisitInt64(c.I64)
	case ContentU64:
		return v.VisitUint64(c.U64)
	case ContentI128:
		return v.VisitInt128(c.I128)
	case ContentU128:
		return v.VisitUint128(c.U128)
	case ContentF64:
		return v.VisitFloat64(c.F64)
	case ContentChar:
		return v.VisitChar(c.Char)
	case ContentString:
		return v.VisitString(c.Str)
	case ContentBytes:
		return v.VisitBytes(slices.Clone(c.Bytes))
	case ContentNone:
		return v.VisitNone()
	case ContentSome:
		return v.VisitSome(NewContentDeserializer(c.Inner))
	case ContentNewtype:
		return v.VisitNewtype(NewContentDeserializer(c.Inner))
	case ContentSeq:
		return v.VisitSeq(&contentSeq{items: c.Seq})
	case ContentMap:
		return v.VisitMap(&contentMap{pairs: c.Map})
	}
	return v.VisitUnit()
}

func (cd *ContentDeserializer) DeserializeBool(v Visitor) error    { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeInt8(v Visitor) error    { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeInt16(v Visitor) error   { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeInt32(v Visitor) error   { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeInt64(v Visitor) error   { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeInt128(v Visitor) error  { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeUint8(v Visitor) error   { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeUint16(v Visitor) error  { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeUint32(v Visitor) error  { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeUint64(v Visitor) error  { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeUint128(v Visitor) error { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeFloat32(v Visitor) error { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeFloat64(v Visitor) error { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeChar(v Visitor) error    { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeString(v Visitor) error  { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeBytes(v Visitor) error   { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeSeq(v Visitor) error     { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeMap(v Visitor) error     { return cd.DeserializeAny(v) }
func (cd *ContentDeserializer) DeserializeIdentifier(v Visitor) error {
	return cd.DeserializeAny(v)
}

func (cd *ContentDeserializer) DeserializeTuple(_ int, v Visitor) error {
	return cd.DeserializeAny(v)
}

func (cd *ContentDeserializer) DeserializeTupleStruct(_ string, _ int, v Visitor) error {
	return cd.DeserializeAny(v)
}

func (cd *ContentDeserializer) DeserializeStruct(_ string, _ []string, v Visitor) error {
	return cd.DeserializeAny(v)
}

func (cd *ContentDeserializer) DeserializeOption(v Visitor) error {
	switch cd.c.Kind {
	case ContentNone, ContentUnit:
		return v.VisitNone()
	case ContentSome:
		return v.VisitSome(NewContentDeserializer(cd.c.Inner))
	}
	return v.VisitSome(cd)
}

func (cd *ContentDeserializer) DeserializeUnit(v Visitor) error {
	switch cd.c.Kind {
	case ContentNone, ContentUnit:
		return v.VisitUnit()
	}
	return cd.DeserializeAny(v)
}

func (cd *ContentDeserializer) DeserializeUnitStruct(_ string, v Visitor) error {
	return cd.DeserializeUnit(v)
}

func (cd *ContentDeserializer) DeserializeNewtypeStruct(_ string, v Visitor) error {
	if cd.c.Kind == ContentNewtype {
		return v.VisitNewtype(NewContentDeserializer(cd.c.Inner))
	}
	return v.VisitNewtype(cd)
}

func (cd *ContentDeserializer) DeserializeEnum(_ string, _ []string, v Visitor) error {
	c := cd.c
	switch c.Kind {
	case ContentString:
		return v.VisitEnum(&contentEnum{variant: c})
	case ContentMap:
		if len(c.Map) != 1 {
			return InvalidValue(UnexpectedMap, "map with a single key")
		}
		return v.VisitEnum(&contentEnum{variant: &c.Map[0].Key, payload: &c.Map[0].Value})
	}
	return InvalidType(c.Describe(), "string or map")
}

func (cd *ContentDeserializer) DeserializeIgnoredAny(v Visitor) error {
	return v.VisitUnit()
}

type contentSeq struct {
	items []Content
	i     int
}

func (s *contentSeq) NextElement(seed Seed) (bool, error) {
	if s.i >= len(s.items) {
		return false, nil
	}
	c := &s.items[s.i]
	s.i++
	return true, seed(NewContentDeserializer(c))
}

func (s *contentSeq) SizeHint() int { return len(s.items) - s.i }

type contentMap struct {
	pending *Content
	pairs   []ContentPair
	i       int
}

func (m *contentMap) NextKey(seed Seed) (bool, error) {
	if m.i >= len(m.pairs) {
		return false, nil
	}
	p := &m.pairs[m.i]
	m.i++
	m.pending = &p.Value
	return true, seed(NewContentDeserializer(&p.Key))
}

func (m *contentMap) NextValue(seed Seed) error {
	if m.pending == nil {
		return errors.InvalidData(errors.PhaseDecode, nil, "map value requested before its key")
	}
	c := m.pending
	m.pending = nil
	return seed(NewContentDeserializer(c))
}

func (m *contentMap) SizeHint() int { return len(m.pairs) - m.i }

type contentEnum struct {
	variant *Content
	payload *Content
}

func (e *contentEnum) Variant(seed Seed) (VariantAccess, error) {
	if err := seed(NewContentDeserializer(e.variant)); err != nil {
		return nil, err
	}
	return &contentVariant{payload: e.payload}, nil
}

type contentVariant struct {
	payload *Content
}

func (cv *contentVariant) UnitVariant() error {
	if cv.payload == nil || cv.payload.Kind == ContentUnit {
		return nil
	}
	return InvalidType(cv.payload.Describe(), "unit variant")
}

func (cv *contentVariant) NewtypeVariant(seed Seed) error {
	if cv.payload == nil {
		return InvalidType(UnexpectedUnit, "newtype variant")
	}
	return seed(NewContentDeserializer(cv.payload))
}

func (cv *contentVariant) TupleVariant(_ int, v Visitor) error {
	if cv.payload == nil || cv.payload.Kind != ContentSeq {
		return InvalidType(cv.describe(), "tuple variant")
	}
	return v.VisitSeq(&contentSeq{items: cv.payload.Seq})
}

func (cv *contentVariant) StructVariant(_ []string, v Visitor) error {
	if cv.payload == nil {
		return InvalidType(UnexpectedUnit, "struct variant")
	}
	switch cv.payload.Kind {
	case ContentMap:
		return v.VisitMap(&contentMap{pairs: cv.payload.Map})
	case ContentSeq:
		return v.VisitSeq(&contentSeq{items: cv.payload.Seq})
	}
	return InvalidType(cv.payload.Describe(), "struct variant")
}

func (cv *contentVariant) describe() string {
	if cv.payload == nil {
		return UnexpectedUnit
	}
	return cv.payload.Describe()
}
