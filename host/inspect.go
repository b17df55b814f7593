package host

import "strconv"

// Class is the coarse shape of a host value as seen by the converters.
type Class uint8

const (
	ClassNullish Class = iota
	ClassBoolean
	ClassNumber
	ClassString
	ClassBigInt
	ClassBytes
	ClassArray
	ClassIterable
	ClassObject
)

var classNames = [...]string{
	ClassNullish:  "nullish",
	ClassBoolean:  "boolean",
	ClassNumber:   "number",
	ClassString:   "string",
	ClassBigInt:   "bigint",
	ClassBytes:    "byte buffer",
	ClassArray:    "array",
	ClassIterable: "iterable",
	ClassObject:   "plain object",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Classify places v in exactly one class. Byte buffers win over arrays and
// iterables, arrays over iterables, and an object carrying an iteration
// capability is iterable rather than plain.
func Classify(v Value) Class {
	switch x := v.(type) {
	case nil, undefinedValue, nullValue:
		return ClassNullish
	case Bool:
		return ClassBoolean
	case Number:
		return ClassNumber
	case String:
		return ClassString
	case BigInt:
		return ClassBigInt
	case *Uint8Array, *ArrayBuffer:
		return ClassBytes
	case *Array:
		return ClassArray
	case *Map, *Set:
		return ClassIterable
	case *Object:
		if x.iter != nil {
			return ClassIterable
		}
		return ClassObject
	}
	return ClassObject
}

func IsNullish(v Value) bool {
	return Classify(v) == ClassNullish
}

// IsObject reports typeof v === "object" && v !== null.
func IsObject(v Value) bool {
	return v != nil && v.Kind() == KindObject
}

// IsArray reports Array.isArray(v).
func IsArray(v Value) bool {
	_, ok := v.(*Array)
	return ok
}

// Iterate returns an iterator when v exposes an iteration capability.
// Primitives, including strings, never do.
func Iterate(v Value) (Iterator, bool) {
	switch x := v.(type) {
	case Iterable:
		return x.Iterate(), true
	case *Object:
		if x.iter != nil {
			return x.iter(), true
		}
	}
	return nil, false
}

// AsBytes returns v as a byte source when it is a Uint8Array or ArrayBuffer.
func AsBytes(v Value) (ByteSource, bool) {
	switch x := v.(type) {
	case *Uint8Array:
		return x, true
	case *ArrayBuffer:
		return x, true
	}
	return nil, false
}

// Entry is one own enumerable property.
type Entry struct {
	Value Value
	Key   string
}

// Entries lists own enumerable string-keyed properties, like Object.entries.
// Maps, Sets and ArrayBuffers have none. ok is false for non-objects.
func Entries(v Value) (entries []Entry, ok bool, err error) {
	switch x := v.(type) {
	case *Object:
		keys := x.Keys()
		entries = make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{Key: k, Value: x.props[k]}
		}
		return entries, true, nil
	case *Array:
		entries = make([]Entry, len(x.elems))
		for i, e := range x.elems {
			entries[i] = Entry{Key: strconv.Itoa(i), Value: e}
		}
		return entries, true, nil
	case *Uint8Array:
		b, err := x.Bytes()
		if err != nil {
			return nil, true, err
		}
		entries = make([]Entry, len(b))
		for i, c := range b {
			entries[i] = Entry{Key: strconv.Itoa(i), Value: Number(c)}
		}
		return entries, true, nil
	case *Map, *Set, *ArrayBuffer:
		return nil, true, nil
	}
	return nil, false, nil
}
