package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which direction of the conversion failed
type Phase string

const (
	PhaseEncode   Phase = "encode"   // Go to host
	PhaseDecode   Phase = "decode"   // host to Go
	PhaseRegister Phase = "register" // enum and type registration
	PhaseHost     Phase = "host"     // heap and value model operations
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch           Kind = "type_mismatch"
	KindOverflow               Kind = "overflow"
	KindUnrepresentableInteger Kind = "unrepresentable_integer"
	KindNonStringMapKey        Kind = "non_string_map_key"
	KindInvalidLength          Kind = "invalid_length"
	KindCustom                 Kind = "custom"
	KindMissingField           Kind = "missing_field"
	KindUnknownVariant         Kind = "unknown_variant"
	KindInvalidData            Kind = "invalid_data"
	KindUnsupported            Kind = "unsupported"
	KindAllocation             Kind = "allocation"
	KindReleased               Kind = "released"
)

// Error is the structured error type used throughout the module.
// GoType names the expected shape, HostType the observed host kind.
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	HostType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	if e.GoType != "" || e.HostType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.HostType != "":
			b.WriteString("expected ")
			b.WriteString(e.GoType)
			b.WriteString(", found ")
			b.WriteString(e.HostType)
		case e.GoType != "":
			b.WriteString("expected ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("found ")
			b.WriteString(e.HostType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.HostType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// FormatPath joins path segments, attaching index segments like "[2]" directly.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the expected shape
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// HostType sets the observed host kind
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, expected, found string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   expected,
		HostType: found,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		GoType: target,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// Unrepresentable creates an error for an integer outside the host's safe range
func Unrepresentable(path []string, value any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnrepresentableInteger,
		Path:   path,
		Detail: fmt.Sprintf("%v can't be represented as a host number", value),
		Value:  value,
	}
}

// NonStringMapKey creates the error for a map key that cannot become a property name
func NonStringMapKey(path []string, found string) *Error {
	return &Error{
		Phase:    PhaseEncode,
		Kind:     KindNonStringMapKey,
		Path:     path,
		HostType: found,
		Detail:   "map key is not a string and cannot be an object key",
	}
}

// InvalidLength creates an invalid length error
func InvalidLength(phase Phase, path []string, length int, expected string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidLength,
		Path:   path,
		Detail: fmt.Sprintf("invalid length %d, expected %s", length, expected),
		Value:  length,
	}
}

// MissingField creates a missing field error
func MissingField(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingField,
		Path:   path,
		Detail: fmt.Sprintf("missing field %q", fieldName),
	}
}

// UnknownVariant creates an unknown variant error
func UnknownVariant(phase Phase, path []string, variant string, enumName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownVariant,
		Path:   path,
		GoType: enumName,
		Detail: fmt.Sprintf("unknown variant %q", variant),
		Value:  variant,
	}
}

// Custom creates an error carrying a message raised during validation
func Custom(phase Phase, msg string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCustom,
		Detail: msg,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath fills in the path of a structured error that has none.
// Errors that already carry a path, and foreign errors, are returned unchanged.
func WithPath(err error, path []string) error {
	e, ok := err.(*Error)
	if !ok || len(e.Path) > 0 || len(path) == 0 {
		return err
	}
	cp := *e
	cp.Path = append([]string(nil), path...)
	return &cp
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
