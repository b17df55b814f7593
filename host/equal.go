package host

import "bytes"

// SameValueZero is the equality used for Map keys and Set members:
// NaN equals NaN, +0 equals -0, objects compare by identity.
func SameValueZero(a, b Value) bool {
	return keyOf(normalize(a)) == keyOf(normalize(b))
}

// StrictEquals implements a === b.
func StrictEquals(a, b Value) bool {
	if x, ok := a.(Number); ok {
		if y, ok := b.(Number); ok {
			return float64(x) == float64(y)
		}
		return false
	}
	return SameValueZero(a, b)
}

// Equal reports deep structural equality: same classes, same primitive
// values (SameValueZero), same ordered entries and same bytes.
func Equal(a, b Value) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.elems {
			if !Equal(x.elems[i], y.elems[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() || x.Class() != y.Class() {
			return false
		}
		xk, yk := x.Keys(), y.Keys()
		for i := range xk {
			if xk[i] != yk[i] || !Equal(x.props[xk[i]], y.props[yk[i]]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.keys {
			if !Equal(x.keys[i], y.keys[i]) || !Equal(x.vals[i], y.vals[i]) {
				return false
			}
		}
		return true
	case *Set:
		y, ok := b.(*Set)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.vals {
			if !Equal(x.vals[i], y.vals[i]) {
				return false
			}
		}
		return true
	case *Uint8Array, *ArrayBuffer:
		if Classify(b) != ClassBytes || a.(ByteSource).Len() != b.(ByteSource).Len() {
			return false
		}
		if _, same := b.(*Uint8Array); same != isView(a) {
			return false
		}
		xb, err1 := a.(ByteSource).Bytes()
		yb, err2 := b.(ByteSource).Bytes()
		return err1 == nil && err2 == nil && bytes.Equal(xb, yb)
	}
	return SameValueZero(a, b)
}

func isView(v Value) bool {
	_, ok := v.(*Uint8Array)
	return ok
}
