package coerce

import (
	"math"
	"testing"
)

func TestUint(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		bits   int
		want   uint64
		wantOK bool
	}{
		{uint8(255), "u8 max", 8, 255, true},
		{uint16(256), "u16 into u8", 8, 0, false},
		{uint32(math.MaxUint32), "u32 max", 32, math.MaxUint32, true},
		{uint64(math.MaxUint64), "u64 max", 64, math.MaxUint64, true},
		{uint64(1 << 32), "u64 into u32", 32, 0, false},
		{int32(7), "positive int32", 16, 7, true},
		{int64(-1), "negative int64", 64, 0, false},
		{-1, "negative int", 8, 0, false},
		{float64(42), "float64 integral", 8, 42, true},
		{float64(65535), "float64 u16 max", 16, 65535, true},
		{float64(65536), "float64 above u16", 16, 0, false},
		{3.5, "float64 fractional", 32, 0, false},
		{math.NaN(), "NaN", 64, 0, false},
		{math.Inf(1), "infinity", 64, 0, false},
		{float64(1 << 64), "float64 2^64", 64, 0, false},
		{float32(100), "float32", 8, 100, true},
		{"1", "string", 32, 0, false},
		{nil, "nil", 32, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Uint(tt.input, tt.bits)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Uint(%v, %d) = %d, %v; want %d, %v", tt.input, tt.bits, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		bits   int
		want   int64
		wantOK bool
	}{
		{int8(-128), "s8 min", 8, -128, true},
		{int16(-129), "s16 into s8", 8, 0, false},
		{int16(127), "s16 fits s8", 8, 127, true},
		{int32(math.MinInt32), "s32 min", 32, math.MinInt32, true},
		{int64(math.MaxInt32 + 1), "s64 into s32", 32, 0, false},
		{int64(math.MinInt64), "s64 min", 64, math.MinInt64, true},
		{uint8(200), "u8 into s8", 8, 0, false},
		{uint32(200), "u32 into s16", 16, 200, true},
		{uint64(math.MaxUint64), "u64 max", 64, 0, false},
		{float64(-3), "float64 negative", 16, -3, true},
		{-0.5, "float64 fractional", 32, 0, false},
		{float64(-(1 << 63)), "float64 -2^63", 64, math.MinInt64, true},
		{float64(1 << 63), "float64 2^63", 64, 0, false},
		{true, "bool", 8, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int(tt.input, tt.bits)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Int(%v, %d) = %d, %v; want %d, %v", tt.input, tt.bits, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		input  any
		name   string
		want   float64
		wantOK bool
	}{
		{1.25, "float64", 1.25, true},
		{float32(0.5), "float32", 0.5, true},
		{int32(-9), "int32", -9, true},
		{uint64(1 << 60), "exact uint64", 1 << 60, true},
		{uint64(1<<60 + 1), "inexact uint64", 0, false},
		{int64(1<<53 + 1), "inexact int64", 0, false},
		{"x", "string", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Float(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Float(%v) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
