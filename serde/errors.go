package serde

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/hostserde/errors"
)

// InvalidType reports input of the wrong kind; unexp describes what was found.
func InvalidType(unexp, exp string) error {
	return errors.TypeMismatch(errors.PhaseDecode, nil, exp, unexp)
}

// InvalidValue reports input of the right kind holding an unacceptable value.
func InvalidValue(unexp, exp string) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		GoType(exp).
		HostType(unexp).
		Build()
}

// OutOfRange reports an integer that does not fit the requested width.
func OutOfRange(v any, target string) error {
	return errors.Overflow(errors.PhaseDecode, nil, v, target)
}

func InvalidLength(n int, exp string) error {
	return errors.InvalidLength(errors.PhaseDecode, nil, n, exp)
}

func MissingField(name string) error {
	return errors.MissingField(errors.PhaseDecode, nil, name)
}

func UnknownVariant(variant string, enum string, expected []string) error {
	err := errors.UnknownVariant(errors.PhaseDecode, nil, variant, enum)
	if len(expected) > 0 {
		err.Detail += ", expected one of " + quoteList(expected)
	}
	return err
}

// Custom reports a decode-time validation failure.
func Custom(format string, args ...any) error {
	return errors.Custom(errors.PhaseDecode, fmt.Sprintf(format, args...))
}

// EncodeCustom reports an encode-time failure raised by a Serializable.
func EncodeCustom(format string, args ...any) error {
	return errors.Custom(errors.PhaseEncode, fmt.Sprintf(format, args...))
}

func quoteList(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = "`" + n + "`"
	}
	return strings.Join(q, ", ")
}

// Descriptions of unexpected input, used with InvalidType.

func UnexpectedBool(v bool) string   { return "boolean `" + strconv.FormatBool(v) + "`" }
func UnexpectedInt(v int64) string   { return "integer `" + strconv.FormatInt(v, 10) + "`" }
func UnexpectedUint(v uint64) string { return "integer `" + strconv.FormatUint(v, 10) + "`" }
func UnexpectedFloat(v float64) string {
	return "floating point `" + strconv.FormatFloat(v, 'g', -1, 64) + "`"
}
func UnexpectedChar(v rune) string           { return "character `" + string(v) + "`" }
func UnexpectedString(v string) string       { return "string " + strconv.Quote(v) }
func UnexpectedBigInt(v fmt.Stringer) string { return "integer `" + v.String() + "`" }

const (
	UnexpectedBytes   = "byte array"
	UnexpectedOption  = "Option value"
	UnexpectedUnit    = "unit value"
	UnexpectedNewtype = "newtype struct"
	UnexpectedSeq     = "sequence"
	UnexpectedMap     = "map"
	UnexpectedEnum    = "enum"
)
