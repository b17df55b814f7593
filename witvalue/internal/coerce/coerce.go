// Package coerce converts the loosely typed numbers found in lifted WIT
// values (native Go integers, or float64 after a JSON round trip) into a
// checked width.
package coerce

import "math"

// Uint returns value as an unsigned integer that fits in bits (8..64).
func Uint(value any, bits int) (uint64, bool) {
	var u uint64
	switch v := value.(type) {
	case uint8:
		u = uint64(v)
	case uint16:
		u = uint64(v)
	case uint32:
		u = uint64(v)
	case uint64:
		u = v
	case uint:
		u = uint64(v)
	case int8, int16, int32, int64, int:
		i, _ := Int(v, 64)
		if i < 0 {
			return 0, false
		}
		u = uint64(i)
	case float32:
		return Uint(float64(v), bits)
	case float64:
		if v < 0 || v >= 1<<64 || v != math.Trunc(v) {
			return 0, false
		}
		u = uint64(v)
	default:
		return 0, false
	}
	if bits < 64 && u >= 1<<bits {
		return 0, false
	}
	return u, true
}

// Int returns value as a signed integer that fits in bits (8..64).
func Int(value any, bits int) (int64, bool) {
	var i int64
	switch v := value.(type) {
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case int:
		i = int64(v)
	case uint8, uint16, uint32, uint64, uint:
		u, _ := Uint(v, 64)
		if u > math.MaxInt64 {
			return 0, false
		}
		i = int64(u)
	case float32:
		return Int(float64(v), bits)
	case float64:
		if v < -(1<<63) || v >= 1<<63 || v != math.Trunc(v) {
			return 0, false
		}
		i = int64(v)
	default:
		return 0, false
	}
	if bits < 64 && (i < -(1<<(bits-1)) || i >= 1<<(bits-1)) {
		return 0, false
	}
	return i, true
}

// Float returns value as a float64. Integers convert when exact.
func Float(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if i, ok := Int(value, 64); ok {
		f := float64(i)
		if f >= 1<<63 || int64(f) != i {
			return 0, false
		}
		return f, true
	}
	if u, ok := Uint(value, 64); ok {
		f := float64(u)
		if f < 1<<64 && uint64(f) == u {
			return f, true
		}
	}
	return 0, false
}
