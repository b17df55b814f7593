package interchange

import (
	"encoding/binary"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
)

const maxCBORDepth = 512

// encMode writes floats in their shortest exact width and bigints always
// as bignums.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		ShortestFloat: cbor.ShortestFloat16,
		NaNConvert:    cbor.NaNConvert7e00,
		InfConvert:    cbor.InfConvertFloat16,
		BigIntConvert: cbor.BigIntConvertNone,
	}.EncMode()
	if err != nil {
		panic("interchange: CBOR encoder initialization failed: " + err.Error())
	}
}

var cborUndefined = cbor.RawMessage{0xf7}

// MarshalCBOR encodes v. Integral numbers within the safe range are
// written as CBOR integers, other numbers as floats.
func MarshalCBOR(v host.Value) ([]byte, error) {
	item, err := toCBOR(v, 0)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(item)
}

// DiagnoseCBOR returns the diagnostic notation of every item in data, one
// per line.
func DiagnoseCBOR(data []byte) (string, error) {
	var out []byte
	for len(data) > 0 {
		notation, rest, err := cbor.DiagnoseFirst(data)
		if err != nil {
			return "", errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "diagnose CBOR")
		}
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, notation...)
		data = rest
	}
	return string(out), nil
}

func toCBOR(v host.Value, depth int) (any, error) {
	if depth > maxCBORDepth {
		return nil, errors.InvalidData(errors.PhaseHost, nil, "value nested too deeply for CBOR")
	}
	switch x := v.(type) {
	case nil:
		return cborUndefined, nil
	case host.Bool:
		return bool(x), nil
	case host.Number:
		f := float64(x)
		if host.IsSafeInteger(f) && !(f == 0 && math.Signbit(f)) {
			return int64(f), nil
		}
		return f, nil
	case host.String:
		return string(x), nil
	case host.BigInt:
		return x.Int(), nil
	case *host.Array:
		return toCBORList(x.Values(), depth)
	case *host.Set:
		return toCBORList(x.Values(), depth)
	case *host.Map:
		var (
			m   orderedMap
			err error
		)
		x.Each(func(k, val host.Value) bool {
			var p cborPair
			if p.key, err = toCBOR(k, depth+1); err != nil {
				return false
			}
			if p.value, err = toCBOR(val, depth+1); err != nil {
				return false
			}
			m = append(m, p)
			return true
		})
		return m, err
	case *host.Object:
		entries, _, err := host.Entries(x)
		if err != nil {
			return nil, err
		}
		m := make(orderedMap, len(entries))
		for i, e := range entries {
			val, err := toCBOR(e.Value, depth+1)
			if err != nil {
				return nil, err
			}
			m[i] = cborPair{key: e.Key, value: val}
		}
		return m, nil
	}
	if src, ok := host.AsBytes(v); ok {
		return src.Bytes()
	}
	switch v.Kind() {
	case host.KindUndefined:
		return cborUndefined, nil
	case host.KindNull:
		return nil, nil
	}
	return nil, errors.Unsupported(errors.PhaseHost, "CBOR encoding of "+host.Describe(v))
}

func toCBORList(vals []host.Value, depth int) ([]any, error) {
	out := make([]any, len(vals))
	for i, e := range vals {
		item, err := toCBOR(e, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

type cborPair struct {
	key   any
	value any
}

// orderedMap is a CBOR map written in slice order.
type orderedMap []cborPair

func (m orderedMap) MarshalCBOR() ([]byte, error) {
	buf := appendHead(nil, 5, uint64(len(m)))
	for _, p := range m {
		for _, item := range [2]any{p.key, p.value} {
			b, err := encMode.Marshal(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
	}
	return buf, nil
}

// appendHead appends a CBOR initial byte and argument.
func appendHead(b []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(b, m|byte(n))
	case n <= math.MaxUint8:
		return append(b, m|24, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(b, m|25), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(b, m|26), uint32(n))
	}
	return binary.BigEndian.AppendUint64(append(b, m|27), n)
}
