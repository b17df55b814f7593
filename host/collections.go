package host

import (
	"math"
	"slices"
	"strconv"
)

// Array is a host array. Holes read as Undefined.
type Array struct {
	elems []Value
}

func NewArray(elems ...Value) *Array {
	a := &Array{elems: make([]Value, len(elems))}
	for i, e := range elems {
		a.elems[i] = normalize(e)
	}
	return a
}

// NewArrayCap returns an empty array with room for n elements.
func NewArrayCap(n int) *Array {
	return &Array{elems: make([]Value, 0, n)}
}

func (*Array) Kind() Kind { return KindObject }
func (*Array) hostValue() {}

func (a *Array) Len() int { return len(a.elems) }

// Get returns element i, or Undefined when i is out of range.
func (a *Array) Get(i int) Value {
	if i < 0 || i >= len(a.elems) {
		return Undefined
	}
	return a.elems[i]
}

func (a *Array) Push(v Value) {
	a.elems = append(a.elems, normalize(v))
}

// Set stores v at index i, extending the array with holes as needed.
func (a *Array) Set(i int, v Value) {
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined)
	}
	a.elems[i] = normalize(v)
}

// Values returns a copy of the elements.
func (a *Array) Values() []Value {
	return slices.Clone(a.elems)
}

func (a *Array) Iterate() Iterator {
	return SliceIterator(a.elems)
}

// Object is a plain host property bag. Own property order follows the host:
// array-index keys ascending, then the remaining keys in insertion order.
type Object struct {
	props map[string]Value
	iter  func() Iterator
	class string
	keys  []string
}

func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

// NewObjectOfClass returns an empty object whose constructor name is class.
func NewObjectOfClass(class string) *Object {
	o := NewObject()
	o.class = class
	return o
}

// NewIterable returns an object whose only capability is iteration.
func NewIterable(fn func() Iterator) *Object {
	o := NewObject()
	o.iter = fn
	return o
}

// NewError builds a host Error object.
func NewError(name, message string) *Object {
	o := NewObjectOfClass("Error")
	o.Set("name", String(name))
	o.Set("message", String(message))
	return o
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) hostValue() {}

// Class returns the constructor name; plain objects report "Object".
func (o *Object) Class() string {
	if o.class == "" {
		return "Object"
	}
	return o.class
}

// SetIterator installs an iteration capability on the object.
func (o *Object) SetIterator(fn func() Iterator) {
	o.iter = fn
}

func (o *Object) Set(key string, v Value) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = normalize(v)
}

// Get returns the property value, or Undefined when absent.
func (o *Object) Get(key string) Value {
	if v, ok := o.props[key]; ok {
		return v
	}
	return Undefined
}

// Lookup returns the property value and whether it is an own property.
func (o *Object) Lookup(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.props[key]
	return ok
}

func (o *Object) Delete(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	return true
}

func (o *Object) Len() int { return len(o.keys) }

// Keys returns the own property names in host enumeration order.
func (o *Object) Keys() []string {
	var indexed []string
	for _, k := range o.keys {
		if isArrayIndex(k) {
			indexed = append(indexed, k)
		}
	}
	if len(indexed) == 0 {
		return slices.Clone(o.keys)
	}
	slices.SortFunc(indexed, func(a, b string) int {
		x, _ := strconv.ParseUint(a, 10, 32)
		y, _ := strconv.ParseUint(b, 10, 32)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	out := make([]string, 0, len(o.keys))
	out = append(out, indexed...)
	for _, k := range o.keys {
		if !isArrayIndex(k) {
			out = append(out, k)
		}
	}
	return out
}

// isArrayIndex reports whether k is a canonical uint32 below 2^32-1.
func isArrayIndex(k string) bool {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	return err == nil && n < math.MaxUint32
}

// Map is a host Map: insertion-ordered, keyed by SameValueZero.
type Map struct {
	index map[mapKey]int
	keys  []Value
	vals  []Value
}

type mapKey struct {
	ref  any
	s    string
	f    float64
	kind Kind
}

func keyOf(v Value) mapKey {
	switch x := v.(type) {
	case Bool:
		if x {
			return mapKey{kind: KindBoolean, f: 1}
		}
		return mapKey{kind: KindBoolean}
	case Number:
		f := float64(x)
		if math.IsNaN(f) {
			return mapKey{kind: KindNumber, s: "NaN"}
		}
		if f == 0 {
			f = 0
		}
		return mapKey{kind: KindNumber, f: f}
	case String:
		return mapKey{kind: KindString, s: string(x)}
	case BigInt:
		return mapKey{kind: KindBigInt, s: x.String()}
	case undefinedValue, nullValue:
		return mapKey{kind: v.Kind()}
	}
	return mapKey{kind: KindObject, ref: v}
}

func NewMap() *Map {
	return &Map{index: make(map[mapKey]int)}
}

func (*Map) Kind() Kind { return KindObject }
func (*Map) hostValue() {}

func (m *Map) Set(k, v Value) {
	k, v = normalize(k), normalize(v)
	key := keyOf(k)
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

func (m *Map) Get(k Value) (Value, bool) {
	if i, ok := m.index[keyOf(normalize(k))]; ok {
		return m.vals[i], true
	}
	return Undefined, false
}

func (m *Map) Has(k Value) bool {
	_, ok := m.index[keyOf(normalize(k))]
	return ok
}

func (m *Map) Delete(k Value) bool {
	key := keyOf(normalize(k))
	i, ok := m.index[key]
	if !ok {
		return false
	}
	m.keys = slices.Delete(m.keys, i, i+1)
	m.vals = slices.Delete(m.vals, i, i+1)
	delete(m.index, key)
	for j := i; j < len(m.keys); j++ {
		m.index[keyOf(m.keys[j])] = j
	}
	return true
}

func (m *Map) Len() int { return len(m.keys) }

// Each calls fn for every entry in insertion order until fn returns false.
func (m *Map) Each(fn func(k, v Value) bool) {
	for i := range m.keys {
		if !fn(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// Iterate yields [key, value] arrays, like Map.prototype.entries.
func (m *Map) Iterate() Iterator {
	i := 0
	return IteratorFunc(func() (Value, bool, error) {
		if i >= len(m.keys) {
			return nil, false, nil
		}
		pair := NewArray(m.keys[i], m.vals[i])
		i++
		return pair, true, nil
	})
}

// Set is a host Set: insertion-ordered, SameValueZero membership.
type Set struct {
	index map[mapKey]struct{}
	vals  []Value
}

func NewSet(vals ...Value) *Set {
	s := &Set{index: make(map[mapKey]struct{})}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func (*Set) Kind() Kind { return KindObject }
func (*Set) hostValue() {}

func (s *Set) Add(v Value) {
	v = normalize(v)
	key := keyOf(v)
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = struct{}{}
	s.vals = append(s.vals, v)
}

func (s *Set) Has(v Value) bool {
	_, ok := s.index[keyOf(normalize(v))]
	return ok
}

func (s *Set) Len() int { return len(s.vals) }

func (s *Set) Values() []Value {
	return slices.Clone(s.vals)
}

func (s *Set) Iterate() Iterator {
	return SliceIterator(s.vals)
}

// Iterator is a host iterator protocol object.
type Iterator interface {
	// Next returns the next value, or ok == false once exhausted.
	Next() (v Value, ok bool, err error)
}

// Iterable is implemented by values with a native iteration capability.
type Iterable interface {
	Value
	Iterate() Iterator
}

// IteratorFunc adapts a function to the Iterator interface.
type IteratorFunc func() (Value, bool, error)

func (f IteratorFunc) Next() (Value, bool, error) { return f() }

// SliceIterator iterates over vals without copying them.
func SliceIterator(vals []Value) Iterator {
	i := 0
	return IteratorFunc(func() (Value, bool, error) {
		if i >= len(vals) {
			return nil, false, nil
		}
		v := vals[i]
		i++
		return v, true, nil
	})
}
