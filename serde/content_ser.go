package serde

import "slices"

// ToContent serializes v into a Content tree. Enum variants are written
// externally tagged: a unit variant as its name, any other as a one-entry
// map from name to payload.
func ToContent(v any) (Content, error) {
	var s contentSerializer
	if err := Serialize(v, &s); err != nil {
		return Content{}, err
	}
	return s.out, nil
}

type contentSerializer struct {
	out Content
}

func (s *contentSerializer) set(c Content) error {
	s.out = c
	return nil
}

func (s *contentSerializer) SerializeBool(v bool) error {
	return s.set(Content{Kind: ContentBool, Bool: v})
}

func (s *contentSerializer) SerializeInt8(v int8) error   { return s.SerializeInt64(int64(v)) }
func (s *contentSerializer) SerializeInt16(v int16) error { return s.SerializeInt64(int64(v)) }
func (s *contentSerializer) SerializeInt32(v int32) error { return s.SerializeInt64(int64(v)) }

func (s *contentSerializer) SerializeInt64(v int64) error {
	return s.set(Content{Kind: ContentI64, I64: v})
}

func (s *contentSerializer) SerializeInt128(v Int128) error {
	return s.set(Content{Kind: ContentI128, I128: v})
}

func (s *contentSerializer) SerializeUint8(v uint8) error   { return s.SerializeUint64(uint64(v)) }
func (s *contentSerializer) SerializeUint16(v uint16) error { return s.SerializeUint64(uint64(v)) }
func (s *contentSerializer) SerializeUint32(v uint32) error { return s.SerializeUint64(uint64(v)) }

func (s *contentSerializer) SerializeUint64(v uint64) error {
	return s.set(Content{Kind: ContentU64, U64: v})
}

func (s *contentSerializer) SerializeUint128(v Uint128) error {
	return s.set(Content{Kind: ContentU128, U128: v})
}

func (s *contentSerializer) SerializeFloat32(v float32) error { return s.SerializeFloat64(float64(v)) }

func (s *contentSerializer) SerializeFloat64(v float64) error {
	return s.set(Content{Kind: ContentF64, F64: v})
}

func (s *contentSerializer) SerializeChar(v rune) error {
	return s.set(Content{Kind: ContentChar, Char: v})
}

func (s *contentSerializer) SerializeString(v string) error {
	return s.set(Content{Kind: ContentString, Str: v})
}

func (s *contentSerializer) SerializeBytes(v []byte) error {
	return s.set(Content{Kind: ContentBytes, Bytes: slices.Clone(v)})
}

func (s *contentSerializer) SerializeNone() error { return s.set(Content{Kind: ContentNone}) }

func (s *contentSerializer) SerializeSome(v any) error {
	inner, err := ToContent(v)
	if err != nil {
		return err
	}
	return s.set(Content{Kind: ContentSome, Inner: &inner})
}

func (s *contentSerializer) SerializeUnit() error { return s.set(Content{Kind: ContentUnit}) }

func (s *contentSerializer) SerializeUnitStruct(string) error { return s.SerializeUnit() }

func (s *contentSerializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.SerializeString(variant)
}

func (s *contentSerializer) SerializeNewtypeStruct(_ string, v any) error {
	inner, err := ToContent(v)
	if err != nil {
		return err
	}
	return s.set(Content{Kind: ContentNewtype, Inner: &inner})
}

func (s *contentSerializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v any) error {
	inner, err := ToContent(v)
	if err != nil {
		return err
	}
	return s.set(singleEntry(variant, inner))
}

func singleEntry(key string, value Content) Content {
	return Content{Kind: ContentMap, Map: []ContentPair{{
		Key:   Content{Kind: ContentString, Str: key},
		Value: value,
	}}}
}

func (s *contentSerializer) SerializeSeq(length int) (SerializeSeq, error) {
	return &contentSeqWriter{out: &s.out, items: make([]Content, 0, max(length, 0))}, nil
}

func (s *contentSerializer) SerializeTuple(length int) (SerializeSeq, error) {
	return s.SerializeSeq(length)
}

func (s *contentSerializer) SerializeTupleStruct(_ string, length int) (SerializeSeq, error) {
	return s.SerializeSeq(length)
}

func (s *contentSerializer) SerializeTupleVariant(_ string, _ uint32, variant string, length int) (SerializeSeq, error) {
	return &contentSeqWriter{out: &s.out, items: make([]Content, 0, max(length, 0)), variant: variant}, nil
}

func (s *contentSerializer) SerializeMap(length int) (SerializeMap, error) {
	return &contentMapWriter{out: &s.out, pairs: make([]ContentPair, 0, max(length, 0))}, nil
}

func (s *contentSerializer) SerializeStruct(_ string, length int) (SerializeStruct, error) {
	return &contentMapWriter{out: &s.out, pairs: make([]ContentPair, 0, max(length, 0))}, nil
}

func (s *contentSerializer) SerializeStructVariant(_ string, _ uint32, variant string, length int) (SerializeStruct, error) {
	return &contentMapWriter{out: &s.out, pairs: make([]ContentPair, 0, max(length, 0)), variant: variant}, nil
}

type contentSeqWriter struct {
	out     *Content
	items   []Content
	variant string
}

func (w *contentSeqWriter) SerializeElement(v any) error {
	c, err := ToContent(v)
	if err != nil {
		return err
	}
	w.items = append(w.items, c)
	return nil
}

func (w *contentSeqWriter) End() error {
	c := Content{Kind: ContentSeq, Seq: w.items}
	if w.variant != "" {
		c = singleEntry(w.variant, c)
	}
	*w.out = c
	return nil
}

type contentMapWriter struct {
	out     *Content
	pairs   []ContentPair
	variant string
	key     *Content
}

func (w *contentMapWriter) SerializeKey(k any) error {
	c, err := ToContent(k)
	if err != nil {
		return err
	}
	w.key = &c
	return nil
}

func (w *contentMapWriter) SerializeValue(v any) error {
	c, err := ToContent(v)
	if err != nil {
		return err
	}
	var key Content
	if w.key != nil {
		key = *w.key
	}
	w.key = nil
	w.pairs = append(w.pairs, ContentPair{Key: key, Value: c})
	return nil
}

func (w *contentMapWriter) SerializeField(key string, v any) error {
	c, err := ToContent(v)
	if err != nil {
		return err
	}
	w.pairs = append(w.pairs, ContentPair{Key: Content{Kind: ContentString, Str: key}, Value: c})
	return nil
}

func (w *contentMapWriter) SkipField(string) error { return nil }

func (w *contentMapWriter) End() error {
	c := Content{Kind: ContentMap, Map: w.pairs}
	if w.variant != "" {
		c = singleEntry(w.variant, c)
	}
	*w.out = c
	return nil
}

// Serialize replays the content into s, so a captured value can be written
// to another format unchanged.
func (c *Content) Serialize(s Serializer) error {
	switch c.Kind {
	case ContentBool:
		return s.SerializeBool(c.Bool)
	case ContentI64:
		return s.SerializeInt64(c.I64)
	case ContentU64:
		return s.SerializeUint64(c.U64)
	case ContentI128:
		return s.SerializeInt128(c.I128)
	case ContentU128:
		return s.SerializeUint128(c.U128)
	case ContentF64:
		return s.SerializeFloat64(c.F64)
	case ContentChar:
		return s.SerializeChar(c.Char)
	case ContentString:
		return s.SerializeString(c.Str)
	case ContentBytes:
		return s.SerializeBytes(c.Bytes)
	case ContentNone:
		return s.SerializeNone()
	case ContentSome:
		return s.SerializeSome(c.Inner)
	case ContentNewtype:
		return s.SerializeNewtypeStruct("", c.Inner)
	case ContentSeq:
		seq, err := s.SerializeSeq(len(c.Seq))
		if err != nil {
			return err
		}
		for i := range c.Seq {
			if err := seq.SerializeElement(&c.Seq[i]); err != nil {
				return err
			}
		}
		return seq.End()
	case ContentMap:
		m, err := s.SerializeMap(len(c.Map))
		if err != nil {
			return err
		}
		for i := range c.Map {
			if err := m.SerializeKey(&c.Map[i].Key); err != nil {
				return err
			}
			if err := m.SerializeValue(&c.Map[i].Value); err != nil {
				return err
			}
		}
		return m.End()
	}
	return s.SerializeUnit()
}
