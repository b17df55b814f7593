package host

import (
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/hostserde/errors"
)

var jsonAPI = jsoniter.Config{EscapeHTML: false}.Froze()

// Stringify implements JSON.stringify(v). When the result would be
// undefined (v is undefined) defined is false.
func Stringify(v Value) (out string, defined bool, err error) {
	if Classify(v) == ClassNullish && v != Null {
		return "", false, nil
	}

	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	w := &jsonWriter{stream: stream, seen: make(map[Value]bool)}
	if err := w.value(v); err != nil {
		return "", false, err
	}
	if stream.Error != nil {
		return "", false, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, stream.Error, "stringify")
	}
	return string(stream.Buffer()), true, nil
}

type jsonWriter struct {
	stream *jsoniter.Stream
	seen   map[Value]bool
	path   []string
}

func (w *jsonWriter) value(v Value) error {
	s := w.stream
	switch x := v.(type) {
	case nil, undefinedValue, nullValue:
		s.WriteNil()
	case Bool:
		s.WriteBool(bool(x))
	case Number:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			s.WriteNil()
		} else {
			s.WriteRaw(FormatNumber(f))
		}
	case String:
		s.WriteRaw(QuoteJSON(string(x)))
	case BigInt:
		return errors.New(errors.PhaseHost, errors.KindUnsupported).
			Path(w.path...).
			Detail("do not know how to serialize a BigInt").
			Build()
	case *Array:
		return w.enter(v, func() error { return w.array(x) })
	case *Object:
		return w.enter(v, func() error { return w.object(x) })
	case *Uint8Array:
		b, err := x.Bytes()
		if err != nil {
			return err
		}
		s.WriteObjectStart()
		for i, c := range b {
			if i > 0 {
				s.WriteMore()
			}
			s.WriteRaw(`"` + strconv.Itoa(i) + `":`)
			s.WriteUint8(c)
		}
		s.WriteObjectEnd()
	default:
		// Map, Set and ArrayBuffer have no enumerable own properties.
		s.WriteEmptyObject()
	}
	return nil
}

func (w *jsonWriter) enter(v Value, fn func() error) error {
	if w.seen[v] {
		return errors.InvalidData(errors.PhaseHost, w.path, "converting circular structure to JSON")
	}
	w.seen[v] = true
	err := fn()
	delete(w.seen, v)
	return err
}

func (w *jsonWriter) array(a *Array) error {
	s := w.stream
	s.WriteArrayStart()
	for i, e := range a.elems {
		if i > 0 {
			s.WriteMore()
		}
		w.path = append(w.path, "["+strconv.Itoa(i)+"]")
		err := w.value(e)
		w.path = w.path[:len(w.path)-1]
		if err != nil {
			return err
		}
	}
	s.WriteArrayEnd()
	return nil
}

func (w *jsonWriter) object(o *Object) error {
	s := w.stream
	s.WriteObjectStart()
	first := true
	for _, k := range o.Keys() {
		v := o.props[k]
		if v == Undefined {
			continue
		}
		if !first {
			s.WriteMore()
		}
		first = false
		s.WriteRaw(QuoteJSON(k))
		s.WriteRaw(":")
		w.path = append(w.path, k)
		err := w.value(v)
		w.path = w.path[:len(w.path)-1]
		if err != nil {
			return err
		}
	}
	s.WriteObjectEnd()
	return nil
}

// QuoteJSON quotes s with the escaping JSON.stringify applies: the two
// mandatory escapes, short forms for \b \f \n \r \t, \u00XX for other
// control characters and nothing else. Invalid UTF-8 becomes �.
func QuoteJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				b.WriteString(`�`)
			} else {
				b.WriteString(s[i : i+size])
			}
			i += size
			continue
		}
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
		i++
	}
	b.WriteByte('"')
	return b.String()
}

// ParseJSON implements JSON.parse(data): objects become plain Objects,
// arrays Arrays, every number a Number. data must hold exactly one JSON
// text; numbers beyond the float64 range become ±Infinity.
func ParseJSON(data []byte) (Value, error) {
	if err := validJSON(data); err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "parse JSON")
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "parse JSON")
	}
	return fromJSON(raw, typ)
}

func fromJSON(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return Null, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, jsonError(err)
		}
		return Bool(b), nil
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			// jsonparser reports overflow as a malformed value.
			f, err = strconv.ParseFloat(string(raw), 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return nil, jsonError(err)
			}
		}
		return Number(f), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, jsonError(err)
		}
		return String(s), nil
	case jsonparser.Array:
		arr := NewArray()
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			v, err := fromJSON(value, dt)
			if err != nil {
				inner = err
				return
			}
			arr.Push(v)
		})
		if err == nil {
			err = inner
		}
		if err != nil {
			return nil, jsonError(err)
		}
		return arr, nil
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(raw, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
			v, err := fromJSON(value, dt)
			if err != nil {
				return err
			}
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, jsonError(err)
		}
		return obj, nil
	}
	return nil, errors.InvalidData(errors.PhaseHost, nil, "unexpected JSON token")
}

// jsonNumber is the JSON number grammar; jsoniter reads number text
// without checking it.
var jsonNumber = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?$`)

// validJSON checks that data is one strict JSON text with nothing but
// whitespace after it.
func validJSON(data []byte) error {
	iter := jsonAPI.BorrowIterator(data)
	defer jsonAPI.ReturnIterator(iter)

	checkJSON(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return iter.Error
	}
	iter.WhatIsNext()
	if iter.Error != io.EOF {
		return errors.InvalidData(errors.PhaseHost, nil, "unexpected data after JSON value")
	}
	return nil
}

func checkJSON(iter *jsoniter.Iterator) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, _ string) bool {
			checkJSON(iter)
			return iter.Error == nil || iter.Error == io.EOF
		})
	case jsoniter.ArrayValue:
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			checkJSON(iter)
			return iter.Error == nil || iter.Error == io.EOF
		})
	case jsoniter.NumberValue:
		if n := iter.ReadNumber(); !jsonNumber.MatchString(string(n)) {
			iter.ReportError("checkJSON", "invalid number "+strconv.Quote(string(n)))
		}
	default:
		iter.Skip()
	}
}

func jsonError(err error) error {
	if _, ok := err.(*errors.Error); ok {
		return err
	}
	return errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "parse JSON")
}
