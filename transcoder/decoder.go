package transcoder

import (
	"math"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

// DefaultMaxDepth is the nesting limit of a Decoder built without
// WithMaxDepth. Host objects may be cyclic; the limit turns a cycle into an
// error instead of unbounded recursion.
const DefaultMaxDepth = 512

// Decoder converts host values into typed values. It never mutates its
// input and is safe for concurrent use.
type Decoder struct {
	maxDepth int
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads v into the value target points to.
func (dec *Decoder) Decode(v host.Value, target any) error {
	if err := serde.Deserialize(dec.Deserializer(v), target); err != nil {
		if l := Logger(); l.Core().Enabled(zap.DebugLevel) {
			l.Debug("decode failed", zap.String("input", host.Describe(v)), zap.Error(err))
		}
		return err
	}
	return nil
}

// Deserializer exposes v as a serde.Deserializer, for callers that drive
// decoding themselves.
func (dec *Decoder) Deserializer(v host.Value) serde.Deserializer {
	if v == nil {
		v = host.Undefined
	}
	return &deserializer{dec: dec, v: v}
}

// DecodeAs decodes v into a new T.
func DecodeAs[T any](dec *Decoder, v host.Value) (T, error) {
	var out T
	err := dec.Decode(v, &out)
	return out, err
}

// deserializer is the serde.Deserializer for one host value at one path.
type deserializer struct {
	dec  *Decoder
	v    host.Value
	path []string
}

// hostValue lets Preserve capture the input untouched.
func (d *deserializer) hostValue() host.Value {
	return d.v
}

func (d *deserializer) child(seg string, v host.Value) (*deserializer, error) {
	if d.dec.maxDepth > 0 && len(d.path) >= d.dec.maxDepth {
		return nil, errors.InvalidData(errors.PhaseDecode, d.path,
			"maximum nesting depth "+strconv.Itoa(d.dec.maxDepth)+" exceeded")
	}
	if v == nil {
		v = host.Undefined
	}
	return &deserializer{dec: d.dec, v: v, path: appendPath(d.path, seg)}, nil
}

// sibling reads another value at the same path, such as a map key.
func (d *deserializer) sibling(v host.Value) *deserializer {
	return &deserializer{dec: d.dec, v: v, path: d.path}
}

func (d *deserializer) mismatch(v serde.Visitor) error {
	return errors.TypeMismatch(errors.PhaseDecode, d.path, v.Expecting(), host.Describe(d.v))
}

func (d *deserializer) fail(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithPath(err, d.path)
}

func (d *deserializer) DeserializeAny(v serde.Visitor) error {
	return d.fail(d.any(v))
}

func (d *deserializer) any(v serde.Visitor) error {
	switch host.Classify(d.v) {
	case host.ClassNullish:
		return v.VisitUnit()
	case host.ClassBoolean:
		return v.VisitBool(bool(d.v.(host.Bool)))
	case host.ClassNumber:
		if i, ok := host.SafeInt(d.v); ok {
			return v.VisitInt64(i)
		}
		return v.VisitFloat64(float64(d.v.(host.Number)))
	case host.ClassString:
		return v.VisitString(string(d.v.(host.String)))
	case host.ClassBigInt:
		return visitBigInt(d.v.(host.BigInt), v)
	case host.ClassArray:
		return v.VisitSeq(newArraySeq(d, d.v.(*host.Array)))
	case host.ClassObject:
		entries, _, err := host.Entries(d.v)
		if err != nil {
			return err
		}
		return v.VisitMap(newEntryMap(d, entries))
	}
	return d.mismatch(v)
}

// visitBigInt hands b to the visitor in the narrowest integer that holds it.
func visitBigInt(b host.BigInt, v serde.Visitor) error {
	if i, ok := b.Int64(); ok {
		return v.VisitInt64(i)
	}
	if u, ok := b.Uint64(); ok {
		return v.VisitUint64(u)
	}
	wide := b.Int()
	if i, ok := serde.Int128FromBig(wide); ok {
		return v.VisitInt128(i)
	}
	if u, ok := serde.Uint128FromBig(wide); ok {
		return v.VisitUint128(u)
	}
	return serde.OutOfRange(b.String(), "a 128-bit integer")
}

func (d *deserializer) DeserializeBool(v serde.Visitor) error {
	b, ok := d.v.(host.Bool)
	if !ok {
		return d.mismatch(v)
	}
	return d.fail(v.VisitBool(bool(b)))
}

func (d *deserializer) DeserializeInt8(v serde.Visitor) error  { return d.fail(d.signed(v)) }
func (d *deserializer) DeserializeInt16(v serde.Visitor) error { return d.fail(d.signed(v)) }
func (d *deserializer) DeserializeInt32(v serde.Visitor) error { return d.fail(d.signed(v)) }
func (d *deserializer) DeserializeInt64(v serde.Visitor) error { return d.fail(d.signed(v)) }

func (d *deserializer) DeserializeUint8(v serde.Visitor) error  { return d.fail(d.unsigned(v)) }
func (d *deserializer) DeserializeUint16(v serde.Visitor) error { return d.fail(d.unsigned(v)) }
func (d *deserializer) DeserializeUint32(v serde.Visitor) error { return d.fail(d.unsigned(v)) }
func (d *deserializer) DeserializeUint64(v serde.Visitor) error { return d.fail(d.unsigned(v)) }

// integral extracts a Number holding an integer. Non-integral numbers are a
// type mismatch; integers beyond the safe range overflow.
func (d *deserializer) integral(v serde.Visitor) (int64, bool, error) {
	n, ok := d.v.(host.Number)
	if !ok {
		return 0, false, nil
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false, d.mismatch(v)
	}
	if !host.IsSafeInteger(f) {
		return 0, false, errors.Overflow(errors.PhaseDecode, d.path, host.FormatNumber(f), "a safe integer")
	}
	return int64(f), true, nil
}

func (d *deserializer) signed(v serde.Visitor) error {
	i, ok, err := d.integral(v)
	switch {
	case err != nil:
		return err
	case ok:
		return v.VisitInt64(i)
	}
	b, isBig := d.v.(host.BigInt)
	if !isBig {
		return d.mismatch(v)
	}
	if i, ok := b.Int64(); ok {
		return v.VisitInt64(i)
	}
	return errors.Overflow(errors.PhaseDecode, d.path, b.String(), "i64")
}

func (d *deserializer) unsigned(v serde.Visitor) error {
	i, ok, err := d.integral(v)
	switch {
	case err != nil:
		return err
	case ok && i >= 0:
		return v.VisitUint64(uint64(i))
	case ok:
		return v.VisitInt64(i)
	}
	b, isBig := d.v.(host.BigInt)
	if !isBig {
		return d.mismatch(v)
	}
	if u, ok := b.Uint64(); ok {
		return v.VisitUint64(u)
	}
	return errors.Overflow(errors.PhaseDecode, d.path, b.String(), "u64")
}

func (d *deserializer) DeserializeInt128(v serde.Visitor) error {
	i, ok, err := d.integral(v)
	switch {
	case err != nil:
		return d.fail(err)
	case ok:
		return d.fail(v.VisitInt64(i))
	}
	b, isBig := d.v.(host.BigInt)
	if !isBig {
		return d.mismatch(v)
	}
	n, fits := serde.Int128FromBig(b.Int())
	if !fits {
		return errors.Overflow(errors.PhaseDecode, d.path, b.String(), "i128")
	}
	return d.fail(v.VisitInt128(n))
}

func (d *deserializer) DeserializeUint128(v serde.Visitor) error {
	i, ok, err := d.integral(v)
	switch {
	case err != nil:
		return d.fail(err)
	case ok && i >= 0:
		return d.fail(v.VisitUint64(uint64(i)))
	case ok:
		return d.fail(v.VisitInt64(i))
	}
	b, isBig := d.v.(host.BigInt)
	if !isBig {
		return d.mismatch(v)
	}
	n, fits := serde.Uint128FromBig(b.Int())
	if !fits {
		return errors.Overflow(errors.PhaseDecode, d.path, b.String(), "u128")
	}
	return d.fail(v.VisitUint128(n))
}

func (d *deserializer) DeserializeFloat32(v serde.Visitor) error { return d.DeserializeFloat64(v) }

func (d *deserializer) DeserializeFloat64(v serde.Visitor) error {
	n, ok := d.v.(host.Number)
	if !ok {
		return d.mismatch(v)
	}
	return d.fail(v.VisitFloat64(float64(n)))
}

func (d *deserializer) DeserializeChar(v serde.Visitor) error {
	s, ok := d.v.(host.String)
	if !ok {
		return d.mismatch(v)
	}
	r, size := utf8.DecodeRuneInString(string(s))
	if size == 0 || size != len(s) || r == utf8.RuneError && size == 1 {
		return d.fail(serde.InvalidValue(serde.UnexpectedString(string(s)), "a single character"))
	}
	return d.fail(v.VisitChar(r))
}

func (d *deserializer) DeserializeString(v serde.Visitor) error {
	s, ok := d.v.(host.String)
	if !ok {
		return d.mismatch(v)
	}
	return d.fail(v.VisitString(string(s)))
}

func (d *deserializer) DeserializeIdentifier(v serde.Visitor) error {
	return d.DeserializeString(v)
}

func (d *deserializer) DeserializeBytes(v serde.Visitor) error {
	src, ok := host.AsBytes(d.v)
	if !ok {
		// An array of numbers still reaches visitors that accept sequences.
		return d.DeserializeAny(v)
	}
	b, err := src.Bytes()
	if err != nil {
		return d.fail(err)
	}
	return d.fail(v.VisitBytes(b))
}

func (d *deserializer) DeserializeOption(v serde.Visitor) error {
	if host.IsNullish(d.v) {
		return d.fail(v.VisitNone())
	}
	return d.fail(v.VisitSome(d))
}

func (d *deserializer) DeserializeUnit(v serde.Visitor) error {
	if !host.IsNullish(d.v) {
		return d.mismatch(v)
	}
	return d.fail(v.VisitUnit())
}

func (d *deserializer) DeserializeUnitStruct(_ string, v serde.Visitor) error {
	return d.DeserializeUnit(v)
}

func (d *deserializer) DeserializeNewtypeStruct(_ string, v serde.Visitor) error {
	return d.fail(v.VisitNewtype(d))
}

func (d *deserializer) DeserializeSeq(v serde.Visitor) error {
	if arr, ok := d.v.(*host.Array); ok {
		return d.fail(v.VisitSeq(newArraySeq(d, arr)))
	}
	if it, ok := host.Iterate(d.v); ok {
		return d.fail(v.VisitSeq(newIterSeq(d, it)))
	}
	return d.mismatch(v)
}

func (d *deserializer) DeserializeTuple(_ int, v serde.Visitor) error {
	return d.DeserializeSeq(v)
}

func (d *deserializer) DeserializeTupleStruct(_ string, _ int, v serde.Visitor) error {
	return d.DeserializeSeq(v)
}

func (d *deserializer) DeserializeMap(v serde.Visitor) error {
	if it, ok := host.Iterate(d.v); ok {
		return d.fail(v.VisitMap(newPairMap(d, it)))
	}
	if host.Classify(d.v) == host.ClassObject {
		entries, _, err := host.Entries(d.v)
		if err != nil {
			return d.fail(err)
		}
		return d.fail(v.VisitMap(newEntryMap(d, entries)))
	}
	return d.mismatch(v)
}

func (d *deserializer) DeserializeStruct(_ string, fields []string, v serde.Visitor) error {
	obj, ok := d.v.(*host.Object)
	if !ok || host.Classify(obj) != host.ClassObject {
		return d.mismatch(v)
	}
	return d.fail(v.VisitMap(newObjectFields(d, obj, fields)))
}

func (d *deserializer) DeserializeEnum(_ string, _ []string, v serde.Visitor) error {
	if s, ok := d.v.(host.String); ok {
		return d.fail(v.VisitEnum(&enumPayload{tag: d.sibling(s), payload: d.sibling(host.Undefined)}))
	}
	if !host.IsObject(d.v) {
		return d.mismatch(v)
	}
	entries, _, err := host.Entries(d.v)
	if err != nil {
		return d.fail(err)
	}
	if len(entries) != 1 {
		return d.fail(serde.InvalidLength(len(entries), "1"))
	}
	payload, err := d.child(entries[0].Key, entries[0].Value)
	if err != nil {
		return err
	}
	tag := d.sibling(host.String(entries[0].Key))
	return d.fail(v.VisitEnum(&enumPayload{tag: tag, payload: payload}))
}

func (d *deserializer) DeserializeIgnoredAny(v serde.Visitor) error {
	return d.fail(v.VisitUnit())
}
