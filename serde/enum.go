package serde

import (
	"reflect"
	"sync"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde/internal/types"
	"go.uber.org/zap"
)

// TaggingMode selects how an enum writes its variant name.
type TaggingMode uint8

const (
	TagExternal TaggingMode = iota
	TagInternal
	TagAdjacent
	TagUntagged
)

func (m TaggingMode) String() string {
	switch m {
	case TagExternal:
		return "external"
	case TagInternal:
		return "internal"
	case TagAdjacent:
		return "adjacent"
	case TagUntagged:
		return "untagged"
	}
	return "unknown"
}

// Tagging is an enum's tagging convention together with its field names.
type Tagging struct {
	Tag     string
	Content string
	Mode    TaggingMode
}

// External writes {"Variant": payload}, or just "Variant" for unit variants.
func External() Tagging { return Tagging{Mode: TagExternal} }

// Internal writes the variant name into the payload's own fields.
func Internal(tag string) Tagging { return Tagging{Mode: TagInternal, Tag: tag} }

// Adjacent writes {tag: "Variant", content: payload}.
func Adjacent(tag, content string) Tagging {
	return Tagging{Mode: TagAdjacent, Tag: tag, Content: content}
}

// Untagged writes the payload only; decoding tries variants in order.
func Untagged() Tagging { return Tagging{Mode: TagUntagged} }

// VariantKind is the payload shape of a variant.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewtype
	VariantTuple
	VariantStruct
)

func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit variant"
	case VariantNewtype:
		return "newtype variant"
	case VariantTuple:
		return "tuple variant"
	case VariantStruct:
		return "struct variant"
	}
	return "unknown variant"
}

// Variant binds a variant name to the Go type that represents it.
type Variant struct {
	Type reflect.Type
	Name string
	Kind VariantKind
}

// Unit declares a variant without payload; T is usually an empty struct.
func Unit[T any](name string) Variant {
	return Variant{Name: name, Kind: VariantUnit, Type: reflect.TypeFor[T]()}
}

// Newtype declares a variant whose payload is the T value itself.
func Newtype[T any](name string) Variant {
	return Variant{Name: name, Kind: VariantNewtype, Type: reflect.TypeFor[T]()}
}

// Tuple declares a variant whose payload is the fields of struct T, in order.
func Tuple[T any](name string) Variant {
	return Variant{Name: name, Kind: VariantTuple, Type: reflect.TypeFor[T]()}
}

// Struct declares a variant whose payload is the named fields of struct T.
func Struct[T any](name string) Variant {
	return Variant{Name: name, Kind: VariantStruct, Type: reflect.TypeFor[T]()}
}

// Enum is a registered sum type: an interface and the types implementing it.
type Enum struct {
	iface    reflect.Type
	byType   map[reflect.Type]int
	Name     string
	Variants []Variant
	names    []string
	Tagging  Tagging
}

// VariantNames returns the variant names in declaration order.
func (e *Enum) VariantNames() []string { return e.names }

func (e *Enum) variantIndex(name string) int {
	for i, n := range e.names {
		if n == name {
			return i
		}
	}
	return -1
}

// payloadPlan is the plan of the value carried by variant i, with pointer
// variant types dereferenced.
func (e *Enum) payloadPlan(i int) (*types.CompiledType, error) {
	t := e.Variants[i].Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return plan(t)
}

var enums sync.Map // reflect.Type -> *Enum

// RegisterEnum declares interface I as an enum with the given variants.
// Each variant type must implement I and appear once.
func RegisterEnum[I any](name string, tagging Tagging, variants ...Variant) error {
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		return registerError(name, "enum type %s is not an interface", iface)
	}
	if len(variants) == 0 {
		return registerError(name, "enum has no variants")
	}

	e := &Enum{
		iface:    iface,
		byType:   make(map[reflect.Type]int, len(variants)),
		Name:     name,
		Variants: append([]Variant(nil), variants...),
		names:    make([]string, len(variants)),
		Tagging:  tagging,
	}
	for i, v := range variants {
		if !v.Type.Implements(iface) {
			return registerError(name, "variant %s type %s does not implement %s", v.Name, v.Type, iface)
		}
		if _, dup := e.byType[v.Type]; dup {
			return registerError(name, "type %s is used by more than one variant", v.Type)
		}
		if e.variantIndex(v.Name) >= 0 {
			return registerError(name, "duplicate variant name %q", v.Name)
		}
		if tagging.Mode == TagInternal && v.Kind == VariantTuple {
			return registerError(name, "internally tagged enums cannot hold tuple variant %s", v.Name)
		}
		e.byType[v.Type] = i
		e.names[i] = v.Name

		ct, err := e.payloadPlan(i)
		if err != nil {
			return err
		}
		if (v.Kind == VariantTuple || v.Kind == VariantStruct) && !structLike(ct) {
			return registerError(name, "%s %s needs a struct type, got %s", v.Kind, v.Name, v.Type)
		}
	}
	if (tagging.Mode == TagInternal || tagging.Mode == TagAdjacent) && tagging.Tag == "" {
		return registerError(name, "%s tagging needs a tag field name", tagging.Mode)
	}
	if tagging.Mode == TagAdjacent && (tagging.Content == "" || tagging.Content == tagging.Tag) {
		return registerError(name, "adjacent tagging needs a content field name distinct from the tag")
	}

	enums.Store(iface, e)
	Logger().Debug("enum registered",
		zap.String("enum", name),
		zap.Stringer("tagging", tagging.Mode),
		zap.Int("variants", len(variants)))
	return nil
}

// MustRegisterEnum is RegisterEnum that panics on error, for package init.
func MustRegisterEnum[I any](name string, tagging Tagging, variants ...Variant) {
	if err := RegisterEnum[I](name, tagging, variants...); err != nil {
		panic(err)
	}
}

// LookupEnum returns the enum registered for interface type t.
func LookupEnum(t reflect.Type) (*Enum, bool) {
	e, ok := enums.Load(t)
	if !ok {
		return nil, false
	}
	return e.(*Enum), true
}

func structLike(ct *types.CompiledType) bool {
	switch ct.Kind {
	case types.KindStruct, types.KindTupleStruct, types.KindUnitStruct, types.KindNewtype:
		return true
	}
	return false
}

func registerError(enum string, format string, args ...any) error {
	return errors.New(errors.PhaseRegister, errors.KindUnsupported).
		GoType(enum).
		Detail(format, args...).
		Build()
}
