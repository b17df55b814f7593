package serde

import (
	"math"
	"math/big"
)

// Char marks a rune that serializes as a character rather than an integer.
type Char rune

// Int128 is a two's complement 128-bit signed integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Uint128 is a 128-bit unsigned integer.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

var (
	mask64     = new(big.Int).SetUint64(math.MaxUint64)
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func Int128From64(v int64) Int128 {
	if v < 0 {
		return Int128{Hi: -1, Lo: uint64(v)}
	}
	return Int128{Lo: uint64(v)}
}

// Int128FromBig converts b, reporting false when it does not fit.
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.Cmp(minInt128) < 0 || b.Cmp(maxInt128) > 0 {
		return Int128{}, false
	}
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Int64()
	return Int128{Hi: hi, Lo: lo}, true
}

func (i Int128) Big() *big.Int {
	b := big.NewInt(i.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(i.Lo))
}

// Int64 returns the value when it fits in an int64.
func (i Int128) Int64() (int64, bool) {
	if (i.Hi == 0 && i.Lo <= math.MaxInt64) || (i.Hi == -1 && i.Lo > math.MaxInt64) {
		return int64(i.Lo), true
	}
	return 0, false
}

// Uint64 returns the value when it fits in a uint64.
func (i Int128) Uint64() (uint64, bool) {
	if i.Hi == 0 {
		return i.Lo, true
	}
	return 0, false
}

func (i Int128) Sign() int {
	switch {
	case i.Hi < 0:
		return -1
	case i.Hi == 0 && i.Lo == 0:
		return 0
	}
	return 1
}

func (i Int128) String() string { return i.Big().String() }

func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Uint128FromBig converts b, reporting false when it does not fit.
func Uint128FromBig(b *big.Int) (Uint128, bool) {
	if b.Sign() < 0 || b.Cmp(maxUint128) > 0 {
		return Uint128{}, false
	}
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return Uint128{Hi: hi, Lo: lo}, true
}

func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(u.Lo))
}

// Uint64 returns the value when it fits in a uint64.
func (u Uint128) Uint64() (uint64, bool) {
	return u.Lo, u.Hi == 0
}

// Int64 returns the value when it fits in an int64.
func (u Uint128) Int64() (int64, bool) {
	if u.Hi == 0 && u.Lo <= math.MaxInt64 {
		return int64(u.Lo), true
	}
	return 0, false
}

func (u Uint128) String() string { return u.Big().String() }
