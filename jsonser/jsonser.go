package jsonser

import (
	"math"
	"slices"
	"strconv"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

var api = jsoniter.Config{EscapeHTML: false}.Froze()

// Marshal returns the JSON text of v. A value that would be undefined on the
// host (None, unit) is written as null at the top level.
func Marshal(v any) ([]byte, error) {
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	s := &Serializer{stream: stream}
	if err := serde.Serialize(v, s); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, stream.Error, "write JSON")
	}
	return slices.Clone(stream.Buffer()), nil
}

// MarshalString is Marshal returning a string.
func MarshalString(v any) (string, error) {
	b, err := Marshal(v)
	return string(b), err
}

// Serializer writes one value to a jsoniter stream.
type Serializer struct {
	stream *jsoniter.Stream
	path   []string
	undef  bool
}

// NewSerializer returns a Serializer appending to stream.
func NewSerializer(stream *jsoniter.Stream) *Serializer {
	return &Serializer{stream: stream}
}

// Undefined reports whether the last value written has no JSON form of its
// own and was written as null.
func (s *Serializer) Undefined() bool { return s.undef }

// capture serializes v on its own stream and returns the text.
func (s *Serializer) capture(seg string, v any) (text []byte, undef bool, err error) {
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	c := &Serializer{stream: stream, path: append(slices.Clip(s.path), seg)}
	if err := serde.Serialize(v, c); err != nil {
		return nil, false, errors.WithPath(err, c.path)
	}
	return slices.Clone(stream.Buffer()), c.undef, nil
}

func (s *Serializer) raw(text string) error {
	s.stream.WriteRaw(text)
	return nil
}

func (s *Serializer) number(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		s.stream.WriteNil()
		return nil
	}
	return s.raw(host.FormatNumber(f))
}

func (s *Serializer) undefined() error {
	s.undef = true
	s.stream.WriteNil()
	return nil
}

func (s *Serializer) SerializeBool(v bool) error {
	s.stream.WriteBool(v)
	return nil
}

func (s *Serializer) SerializeInt8(v int8) error   { return s.number(float64(v)) }
func (s *Serializer) SerializeInt16(v int16) error { return s.number(float64(v)) }
func (s *Serializer) SerializeInt32(v int32) error { return s.number(float64(v)) }

func (s *Serializer) SerializeInt64(v int64) error {
	if !host.IsSafeInt64(v) {
		return errors.Unrepresentable(s.path, v)
	}
	return s.raw(strconv.FormatInt(v, 10))
}

func (s *Serializer) SerializeInt128(v serde.Int128) error {
	if i, ok := v.Int64(); ok && host.IsSafeInt64(i) {
		return s.raw(strconv.FormatInt(i, 10))
	}
	return errors.Unrepresentable(s.path, v)
}

func (s *Serializer) SerializeUint8(v uint8) error   { return s.number(float64(v)) }
func (s *Serializer) SerializeUint16(v uint16) error { return s.number(float64(v)) }
func (s *Serializer) SerializeUint32(v uint32) error { return s.number(float64(v)) }

func (s *Serializer) SerializeUint64(v uint64) error {
	if !host.IsSafeUint64(v) {
		return errors.Unrepresentable(s.path, v)
	}
	return s.raw(strconv.FormatUint(v, 10))
}

func (s *Serializer) SerializeUint128(v serde.Uint128) error {
	if u, ok := v.Uint64(); ok && host.IsSafeUint64(u) {
		return s.raw(strconv.FormatUint(u, 10))
	}
	return errors.Unrepresentable(s.path, v)
}

func (s *Serializer) SerializeFloat32(v float32) error { return s.number(float64(v)) }
func (s *Serializer) SerializeFloat64(v float64) error { return s.number(v) }

func (s *Serializer) SerializeChar(v rune) error {
	if !utf8.ValidRune(v) {
		return errors.InvalidData(errors.PhaseEncode, s.path, "invalid char U+"+strconv.FormatInt(int64(v), 16))
	}
	return s.raw(host.QuoteJSON(string(v)))
}

func (s *Serializer) SerializeString(v string) error { return s.raw(host.QuoteJSON(v)) }

// SerializeBytes writes an array of byte values.
func (s *Serializer) SerializeBytes(v []byte) error {
	st := s.stream
	st.WriteArrayStart()
	for i, b := range v {
		if i > 0 {
			st.WriteMore()
		}
		st.WriteUint8(b)
	}
	st.WriteArrayEnd()
	return nil
}

func (s *Serializer) SerializeNone() error             { return s.undefined() }
func (s *Serializer) SerializeSome(v any) error        { return serde.Serialize(v, s) }
func (s *Serializer) SerializeUnit() error             { return s.undefined() }
func (s *Serializer) SerializeUnitStruct(string) error { return s.undefined() }

func (s *Serializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.SerializeString(variant)
}

func (s *Serializer) SerializeNewtypeStruct(_ string, v any) error {
	return serde.Serialize(v, s)
}

func (s *Serializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v any) error {
	w := s.object()
	if err := w.SerializeField(variant, v); err != nil {
		return err
	}
	return w.End()
}

func (s *Serializer) SerializeSeq(int) (serde.SerializeSeq, error) {
	return &arrayWriter{s: s}, nil
}

func (s *Serializer) SerializeTuple(length int) (serde.SerializeSeq, error) {
	return s.SerializeSeq(length)
}

func (s *Serializer) SerializeTupleStruct(_ string, length int) (serde.SerializeSeq, error) {
	return s.SerializeSeq(length)
}

func (s *Serializer) SerializeTupleVariant(_ string, _ uint32, variant string, _ int) (serde.SerializeSeq, error) {
	return &arrayWriter{s: s, variant: variant}, nil
}

// SerializeMap writes an object; every key must be string-like.
func (s *Serializer) SerializeMap(int) (serde.SerializeMap, error) {
	return s.object(), nil
}

func (s *Serializer) SerializeStruct(string, int) (serde.SerializeStruct, error) {
	return s.object(), nil
}

func (s *Serializer) SerializeStructVariant(_ string, _ uint32, variant string, _ int) (serde.SerializeStruct, error) {
	w := s.object()
	w.variant = variant
	return w, nil
}

type arrayWriter struct {
	s       *Serializer
	variant string
	items   [][]byte
}

func (w *arrayWriter) SerializeElement(v any) error {
	text, _, err := w.s.capture("["+strconv.Itoa(len(w.items))+"]", v)
	if err != nil {
		return err
	}
	w.items = append(w.items, text)
	return nil
}

func (w *arrayWriter) End() error {
	st := w.s.stream
	if w.variant != "" {
		st.WriteObjectStart()
		st.WriteRaw(host.QuoteJSON(w.variant))
		st.WriteRaw(":")
	}
	st.WriteArrayStart()
	for i, item := range w.items {
		if i > 0 {
			st.WriteMore()
		}
		st.WriteRaw(string(item))
	}
	st.WriteArrayEnd()
	if w.variant != "" {
		st.WriteObjectEnd()
	}
	return nil
}
