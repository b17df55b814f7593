package host

import "math"

// MaxSafeInteger is the largest integer n such that n and n+1 are both
// exactly representable as a double.
const MaxSafeInteger = 1<<53 - 1

// MinSafeInteger is the negation of MaxSafeInteger.
const MinSafeInteger = -MaxSafeInteger

// IsSafeInteger reports Number.isSafeInteger(f).
func IsSafeInteger(f float64) bool {
	return f == math.Trunc(f) && f >= MinSafeInteger && f <= MaxSafeInteger
}

// SafeInt returns v as an int64 when it is a Number holding a safe integer.
func SafeInt(v Value) (int64, bool) {
	n, ok := v.(Number)
	if !ok || !IsSafeInteger(float64(n)) {
		return 0, false
	}
	return int64(n), true
}

// IsSafeInt64 reports whether i survives a round trip through a double.
func IsSafeInt64(i int64) bool {
	return i >= MinSafeInteger && i <= MaxSafeInteger
}

// IsSafeUint64 reports whether u survives a round trip through a double.
func IsSafeUint64(u uint64) bool {
	return u <= MaxSafeInteger
}
