package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseDecode,
				Kind:     KindTypeMismatch,
				Path:     []string{"user", "tags", "[2]"},
				GoType:   "a string",
				HostType: "number",
				Detail:   "cannot convert",
			},
			contains: []string{"[decode]", "type_mismatch", "user.tags[2]", "expected a string", "found number", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEncode,
				Kind:  KindNonStringMapKey,
			},
			contains: []string{"[encode]", "non_string_map_key"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[host]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidLength,
		Path:  []string{"foo"},
	}

	if !errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindInvalidLength}) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindInvalidLength}) {
		t.Error("different phase should not match")
	}
	if errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindTypeMismatch}) {
		t.Error("different kind should not match")
	}

	var target *Error
	if !errors.As(err, &target) || target.Kind != KindInvalidLength {
		t.Error("errors.As failed")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("cause")
	err := New(PhaseDecode, KindTypeMismatch).
		Path("a", "b").
		GoType("bool").
		HostType("string").
		Value("x").
		Cause(cause).
		Detail("bad %s", "input").
		Build()

	if err.Phase != PhaseDecode || err.Kind != KindTypeMismatch {
		t.Errorf("phase/kind = %s/%s", err.Phase, err.Kind)
	}
	if FormatPath(err.Path) != "a.b" {
		t.Errorf("path = %v", err.Path)
	}
	if err.GoType != "bool" || err.HostType != "string" {
		t.Errorf("types = %s/%s", err.GoType, err.HostType)
	}
	if err.Value != "x" || err.Cause != cause {
		t.Error("value or cause not set")
	}
	if err.Detail != "bad input" {
		t.Errorf("detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		kind     Kind
		contains string
	}{
		{"type mismatch", TypeMismatch(PhaseDecode, nil, "a map", "array"), KindTypeMismatch, "expected a map, found array"},
		{"overflow", Overflow(PhaseDecode, nil, 300, "i8"), KindOverflow, "value 300 overflows i8"},
		{"unrepresentable", Unrepresentable(nil, uint64(9007199254740992)), KindUnrepresentableInteger, "9007199254740992 can't be represented as a host number"},
		{"non string key", NonStringMapKey(nil, "number"), KindNonStringMapKey, "map key is not a string"},
		{"invalid length", InvalidLength(PhaseDecode, nil, 2, "1"), KindInvalidLength, "invalid length 2, expected 1"},
		{"missing field", MissingField(PhaseDecode, nil, "name"), KindMissingField, `missing field "name"`},
		{"unknown variant", UnknownVariant(PhaseDecode, nil, "Nope", "Shape"), KindUnknownVariant, `unknown variant "Nope"`},
		{"custom", Custom(PhaseDecode, "age must be positive"), KindCustom, "age must be positive"},
		{"unsupported", Unsupported(PhaseEncode, "channels"), KindUnsupported, "channels"},
		{"invalid data", InvalidData(PhaseDecode, nil, "bad"), KindInvalidData, "bad"},
		{"allocation", AllocationFailed(16, nil), KindAllocation, "16 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("%q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"[0]"}, "[0]"},
		{[]string{"items", "[3]", "name"}, "items[3].name"},
		{[]string{"m", "[\"k\"]"}, "m[\"k\"]"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWithPath(t *testing.T) {
	base := Custom(PhaseDecode, "boom")
	got := WithPath(base, []string{"a", "[1]"})

	var e *Error
	if !errors.As(got, &e) {
		t.Fatal("expected *Error")
	}
	if FormatPath(e.Path) != "a[1]" {
		t.Errorf("path = %v", e.Path)
	}
	if len(base.Path) != 0 {
		t.Error("original error must not be modified")
	}

	again := WithPath(got, []string{"outer"})
	if again != got {
		t.Error("error with path should be returned unchanged")
	}

	plain := errors.New("plain")
	if WithPath(plain, []string{"x"}) != plain {
		t.Error("foreign errors should be returned unchanged")
	}
}
