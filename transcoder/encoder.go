package transcoder

import (
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

// Encoder converts typed values into host values. It is safe for concurrent
// use; each Encode call works on its own state.
type Encoder struct {
	heap  *host.Heap
	names NameCache
	cfg   Config
}

// NewEncoder returns an Encoder using cfg. Byte buffers go to the default
// heap and property names to a process-wide cache unless options say
// otherwise.
func NewEncoder(cfg Config, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		cfg:   cfg,
		heap:  host.DefaultHeap(),
		names: sharedNames,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Encoder) Config() Config { return e.cfg }

// Encode converts v. Values implementing serde.Serializable drive the
// conversion themselves; other values are walked by reflection.
func (e *Encoder) Encode(v any) (host.Value, error) {
	s := &serializer{enc: e}
	if err := serde.Serialize(v, s); err != nil {
		if l := Logger(); l.Core().Enabled(zap.DebugLevel) {
			l.Debug("encode failed", zap.Error(err))
		}
		return nil, err
	}
	return s.result(), nil
}

// serializer is the serde.Serializer for one value at one path.
type serializer struct {
	enc  *Encoder
	out  host.Value
	path []string
}

func (s *serializer) result() host.Value {
	if s.out == nil {
		return host.Undefined
	}
	return s.out
}

func (s *serializer) set(v host.Value) error {
	s.out = v
	return nil
}

// setHostValue lets Preserve hand over a value untouched.
func (s *serializer) setHostValue(v host.Value) {
	s.out = v
}

// child encodes v one level below s, under seg.
func (s *serializer) child(seg string, v any) (host.Value, error) {
	c := &serializer{enc: s.enc, path: appendPath(s.path, seg)}
	if err := serde.Serialize(v, c); err != nil {
		return nil, errors.WithPath(err, c.path)
	}
	return c.result(), nil
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func (s *serializer) intern(name string) string {
	return s.enc.names.Intern(name)
}

func (s *serializer) SerializeBool(v bool) error { return s.set(host.Bool(v)) }

func (s *serializer) SerializeInt8(v int8) error   { return s.set(host.Number(v)) }
func (s *serializer) SerializeInt16(v int16) error { return s.set(host.Number(v)) }
func (s *serializer) SerializeInt32(v int32) error { return s.set(host.Number(v)) }

func (s *serializer) SerializeInt64(v int64) error {
	if s.enc.cfg.largeIntsAsBigInt {
		return s.set(host.BigIntFromInt64(v))
	}
	if !host.IsSafeInt64(v) {
		return errors.Unrepresentable(s.path, v)
	}
	return s.set(host.Number(v))
}

func (s *serializer) SerializeInt128(v serde.Int128) error {
	if s.enc.cfg.largeIntsAsBigInt {
		return s.set(host.NewBigInt(v.Big()))
	}
	if i, ok := v.Int64(); ok && host.IsSafeInt64(i) {
		return s.set(host.Number(i))
	}
	return errors.Unrepresentable(s.path, v)
}

func (s *serializer) SerializeUint8(v uint8) error   { return s.set(host.Number(v)) }
func (s *serializer) SerializeUint16(v uint16) error { return s.set(host.Number(v)) }
func (s *serializer) SerializeUint32(v uint32) error { return s.set(host.Number(v)) }

func (s *serializer) SerializeUint64(v uint64) error {
	if s.enc.cfg.largeIntsAsBigInt {
		return s.set(host.BigIntFromUint64(v))
	}
	if !host.IsSafeUint64(v) {
		return errors.Unrepresentable(s.path, v)
	}
	return s.set(host.Number(v))
}

func (s *serializer) SerializeUint128(v serde.Uint128) error {
	if s.enc.cfg.largeIntsAsBigInt {
		return s.set(host.NewBigInt(v.Big()))
	}
	if u, ok := v.Uint64(); ok && host.IsSafeUint64(u) {
		return s.set(host.Number(u))
	}
	return errors.Unrepresentable(s.path, v)
}

func (s *serializer) SerializeFloat32(v float32) error { return s.set(host.Number(v)) }
func (s *serializer) SerializeFloat64(v float64) error { return s.set(host.Number(v)) }

func (s *serializer) SerializeChar(v rune) error {
	if !utf8.ValidRune(v) {
		return errors.InvalidData(errors.PhaseEncode, s.path, "invalid char U+"+strconv.FormatInt(int64(v), 16))
	}
	return s.set(host.String(string(v)))
}

func (s *serializer) SerializeString(v string) error { return s.set(host.String(v)) }

func (s *serializer) SerializeBytes(v []byte) error {
	arr, err := s.enc.heap.NewUint8Array(v)
	if err != nil {
		return errors.WithPath(err, s.path)
	}
	return s.set(arr)
}

func (s *serializer) SerializeNone() error { return s.set(host.Undefined) }

func (s *serializer) SerializeSome(v any) error {
	return serde.Serialize(v, s)
}

func (s *serializer) SerializeUnit() error { return s.set(host.Undefined) }

func (s *serializer) SerializeUnitStruct(string) error { return s.set(host.Undefined) }

func (s *serializer) SerializeUnitVariant(_ string, _ uint32, variant string) error {
	return s.set(host.String(variant))
}

func (s *serializer) SerializeNewtypeStruct(_ string, v any) error {
	return serde.Serialize(v, s)
}

func (s *serializer) SerializeNewtypeVariant(_ string, _ uint32, variant string, v any) error {
	payload, err := s.child(variant, v)
	if err != nil {
		return err
	}
	return s.set(s.wrap(variant, payload))
}

// wrap builds the one-entry object {variant: payload}.
func (s *serializer) wrap(variant string, payload host.Value) *host.Object {
	obj := host.NewObject()
	obj.Set(s.intern(variant), payload)
	return obj
}

func (s *serializer) SerializeSeq(length int) (serde.SerializeSeq, error) {
	return &arrayWriter{s: s, arr: host.NewArrayCap(max(length, 0))}, nil
}

func (s *serializer) SerializeTuple(length int) (serde.SerializeSeq, error) {
	return s.SerializeSeq(length)
}

func (s *serializer) SerializeTupleStruct(_ string, length int) (serde.SerializeSeq, error) {
	return s.SerializeSeq(length)
}

func (s *serializer) SerializeTupleVariant(_ string, _ uint32, variant string, length int) (serde.SerializeSeq, error) {
	inner := &serializer{enc: s.enc, path: appendPath(s.path, variant)}
	return &arrayWriter{s: inner, arr: host.NewArrayCap(max(length, 0)), variant: variant, outer: s}, nil
}

func (s *serializer) SerializeMap(length int) (serde.SerializeMap, error) {
	if s.enc.cfg.mapsAsObjects {
		return &objectMapWriter{s: s, obj: host.NewObject()}, nil
	}
	return &mapWriter{s: s, m: host.NewMap()}, nil
}

func (s *serializer) SerializeStruct(_ string, _ int) (serde.SerializeStruct, error) {
	return &objectWriter{s: s, obj: host.NewObject()}, nil
}

func (s *serializer) SerializeStructVariant(_ string, _ uint32, variant string, _ int) (serde.SerializeStruct, error) {
	inner := &serializer{enc: s.enc, path: appendPath(s.path, variant)}
	return &objectWriter{s: inner, obj: host.NewObject(), variant: variant, outer: s}, nil
}

// arrayWriter pushes elements onto an Array. For tuple variants outer
// receives the wrapped result.
type arrayWriter struct {
	s       *serializer
	outer   *serializer
	arr     *host.Array
	variant string
}

func (w *arrayWriter) SerializeElement(v any) error {
	elem, err := w.s.child(indexSeg(w.arr.Len()), v)
	if err != nil {
		return err
	}
	w.arr.Push(elem)
	return nil
}

func (w *arrayWriter) End() error {
	if w.outer != nil {
		return w.outer.set(w.outer.wrap(w.variant, w.arr))
	}
	return w.s.set(w.arr)
}

// objectWriter sets struct fields on an Object in declaration order.
type objectWriter struct {
	s       *serializer
	outer   *serializer
	obj     *host.Object
	variant string
}

func (w *objectWriter) SerializeField(key string, v any) error {
	val, err := w.s.child(key, v)
	if err != nil {
		return err
	}
	w.obj.Set(w.s.intern(key), val)
	return nil
}

func (w *objectWriter) SkipField(string) error { return nil }

func (w *objectWriter) End() error {
	if w.outer != nil {
		return w.outer.set(w.outer.wrap(w.variant, w.obj))
	}
	return w.s.set(w.obj)
}

// mapWriter fills a host Map in the order entries arrive.
type mapWriter struct {
	s       *serializer
	m       *host.Map
	key     host.Value
	seg     string
	pending bool
}

func (w *mapWriter) SerializeKey(k any) error {
	if w.pending {
		return errors.InvalidData(errors.PhaseEncode, w.s.path, "map key serialized twice without a value")
	}
	key, err := w.s.child("<key>", k)
	if err != nil {
		return err
	}
	w.key, w.seg, w.pending = key, keySeg(key), true
	return nil
}

func (w *mapWriter) SerializeValue(v any) error {
	if !w.pending {
		return errors.InvalidData(errors.PhaseEncode, w.s.path, "map value serialized without a key")
	}
	val, err := w.s.child(w.seg, v)
	if err != nil {
		return err
	}
	w.m.Set(w.key, val)
	w.key, w.pending = nil, false
	return nil
}

func (w *mapWriter) End() error {
	return w.s.set(w.m)
}

// objectMapWriter writes map entries as object properties; keys must be
// host strings.
type objectMapWriter struct {
	s       *serializer
	obj     *host.Object
	key     string
	pending bool
}

func (w *objectMapWriter) SerializeKey(k any) error {
	if w.pending {
		return errors.InvalidData(errors.PhaseEncode, w.s.path, "map key serialized twice without a value")
	}
	key, err := w.s.child("<key>", k)
	if err != nil {
		return err
	}
	str, ok := key.(host.String)
	if !ok {
		return errors.NonStringMapKey(w.s.path, host.Describe(key))
	}
	w.key, w.pending = string(str), true
	return nil
}

func (w *objectMapWriter) SerializeValue(v any) error {
	if !w.pending {
		return errors.InvalidData(errors.PhaseEncode, w.s.path, "map value serialized without a key")
	}
	val, err := w.s.child(w.key, v)
	if err != nil {
		return err
	}
	w.obj.Set(w.key, val)
	w.pending = false
	return nil
}

func (w *objectMapWriter) End() error {
	return w.s.set(w.obj)
}

// keySeg names a map entry in error paths.
func keySeg(k host.Value) string {
	if s, ok := k.(host.String); ok {
		return string(s)
	}
	return "[" + host.Describe(k) + "]"
}

// ErrorValue converts err into a host Error object whose name is the error
// kind and whose message is the error text.
func ErrorValue(err error) *host.Object {
	if err == nil {
		return nil
	}
	name := "Error"
	var e *errors.Error
	if errors.As(err, &e) {
		name = string(e.Kind)
	}
	return host.NewError(name, err.Error())
}
