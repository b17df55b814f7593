package serde

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/serde/internal/types"
)

var (
	serializableType    = reflect.TypeFor[Serializable]()
	deserializableType  = reflect.TypeFor[Deserializable]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	int128Type          = reflect.TypeFor[Int128]()
	uint128Type         = reflect.TypeFor[Uint128]()
	charType            = reflect.TypeFor[Char]()
)

// Compiler builds and caches serialization plans for Go types.
type Compiler struct {
	cache sync.Map // reflect.Type -> *types.CompiledType
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

var defaultCompiler = NewCompiler()

func plan(t reflect.Type) (*types.CompiledType, error) {
	return defaultCompiler.Compile(t)
}

// Compile returns the plan for goType, building it on first use.
func (c *Compiler) Compile(goType reflect.Type) (*types.CompiledType, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Detail("Go type cannot be nil").
			Build()
	}
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*types.CompiledType), nil
	}

	st := &compileState{building: make(map[reflect.Type]*types.CompiledType)}
	ct, err := c.compile(goType, st)
	if err != nil {
		return nil, err
	}
	for t, built := range st.building {
		c.cache.LoadOrStore(t, built)
	}
	actual, _ := c.cache.LoadOrStore(goType, ct)
	return actual.(*types.CompiledType), nil
}

type compileState struct {
	building map[reflect.Type]*types.CompiledType
}

func (c *Compiler) compile(t reflect.Type, st *compileState) (*types.CompiledType, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*types.CompiledType), nil
	}
	if ct, ok := st.building[t]; ok {
		return ct, nil
	}

	ct := &types.CompiledType{GoType: t, Name: t.Name()}
	st.building[t] = ct

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		ser := t.Implements(serializableType) || reflect.PointerTo(t).Implements(serializableType)
		de := reflect.PointerTo(t).Implements(deserializableType)
		if ser || de {
			return c.wrap(ct, types.KindCustom, ser, de, st)
		}
		ser = t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
		de = reflect.PointerTo(t).Implements(textUnmarshalerType)
		if ser || de {
			return c.wrap(ct, types.KindText, ser, de, st)
		}
	}

	if err := c.fill(ct, t, st); err != nil {
		delete(st.building, t)
		return nil, err
	}
	return ct, nil
}

// wrap records a custom plan; the structural plan is kept as Base for the
// direction the type does not handle itself.
func (c *Compiler) wrap(ct *types.CompiledType, kind types.Kind, ser, de bool, st *compileState) (*types.CompiledType, error) {
	ct.Kind = kind
	ct.Ser, ct.De = ser, de
	if ser && de {
		return ct, nil
	}
	base := &types.CompiledType{GoType: ct.GoType, Name: ct.Name}
	if err := c.fill(base, ct.GoType, st); err != nil {
		// Types that only make sense through their own methods have no
		// structural fallback.
		base = nil
	}
	ct.Base = base
	return ct, nil
}

func (c *Compiler) fill(ct *types.CompiledType, t reflect.Type, st *compileState) error {
	switch t {
	case int128Type:
		ct.Kind = types.KindI128
		return nil
	case uint128Type:
		ct.Kind = types.KindU128
		return nil
	case charType:
		ct.Kind = types.KindChar
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		ct.Kind = types.KindBool
	case reflect.Int8:
		ct.Kind = types.KindI8
	case reflect.Int16:
		ct.Kind = types.KindI16
	case reflect.Int32:
		ct.Kind = types.KindI32
	case reflect.Int64, reflect.Int:
		ct.Kind = types.KindI64
	case reflect.Uint8:
		ct.Kind = types.KindU8
	case reflect.Uint16:
		ct.Kind = types.KindU16
	case reflect.Uint32:
		ct.Kind = types.KindU32
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		ct.Kind = types.KindU64
	case reflect.Float32:
		ct.Kind = types.KindF32
	case reflect.Float64:
		ct.Kind = types.KindF64
	case reflect.String:
		ct.Kind = types.KindString
	case reflect.Interface:
		ct.Kind = types.KindInterface
	case reflect.Pointer:
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return err
		}
		ct.Kind = types.KindOption
		ct.Elem = elem
	case reflect.Slice:
		if t.Elem() == reflect.TypeFor[byte]() {
			ct.Kind = types.KindBytes
			return nil
		}
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return err
		}
		ct.Kind = types.KindSeq
		ct.Elem = elem
	case reflect.Array:
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return err
		}
		ct.Kind = types.KindTuple
		ct.Elem = elem
		ct.Len = t.Len()
	case reflect.Map:
		key, err := c.compile(t.Key(), st)
		if err != nil {
			return err
		}
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return err
		}
		ct.Kind = types.KindMap
		ct.Key = key
		ct.Elem = elem
	case reflect.Struct:
		return c.fillStruct(ct, t, st)
	default:
		return errors.Unsupported(errors.PhaseRegister, "Go type "+t.String())
	}
	return nil
}

type structMarker uint8

const (
	markerNone structMarker = iota
	markerTuple
	markerTransparent
)

func (c *Compiler) fillStruct(ct *types.CompiledType, t reflect.Type, st *compileState) error {
	marker := markerNone
	fields := make([]types.Field, 0, t.NumField())
	if err := c.collectFields(t, nil, &fields, &marker, st); err != nil {
		return err
	}

	switch marker {
	case markerTuple:
		ct.Kind = types.KindTupleStruct
		for i := range fields {
			fields[i].Name = strconv.Itoa(i)
			fields[i].Optional = false
			fields[i].OmitEmpty = false
		}
	case markerTransparent:
		if len(fields) != 1 {
			return errors.New(errors.PhaseRegister, errors.KindUnsupported).
				GoType(t.String()).
				Detail("transparent struct must have exactly one field, has %d", len(fields)).
				Build()
		}
		ct.Kind = types.KindNewtype
	default:
		if len(fields) == 0 {
			ct.Kind = types.KindUnitStruct
		} else {
			ct.Kind = types.KindStruct
		}
	}
	ct.Fields = fields
	ct.Len = len(fields)
	return nil
}

// collectFields resolves exported fields in declaration order, inlining
// untagged embedded structs.
func (c *Compiler) collectFields(t reflect.Type, index []int, out *[]types.Field, marker *structMarker, st *compileState) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := parseTag(sf)

		if sf.Name == "_" {
			switch {
			case tag.has("tuple"):
				*marker = markerTuple
			case tag.has("transparent"):
				*marker = markerTransparent
			}
			continue
		}
		if tag.skip {
			continue
		}

		idx := append(append([]int(nil), index...), i)

		if sf.Anonymous && tag.name == "" && sf.Type.Kind() == reflect.Struct && !customType(sf.Type) {
			if err := c.collectFields(sf.Type, idx, out, marker, st); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		ft, err := c.compile(sf.Type, st)
		if err != nil {
			return err
		}
		name := tag.name
		if name == "" {
			name = sf.Name
		}
		*out = append(*out, types.Field{
			Type:      ft,
			Name:      name,
			Index:     idx,
			OmitEmpty: tag.has("omitempty"),
			Optional:  sf.Type.Kind() == reflect.Pointer || tag.has("omitempty") || tag.has("default"),
		})
	}
	return nil
}

func customType(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return t.Implements(serializableType) || pt.Implements(serializableType) ||
		pt.Implements(deserializableType) ||
		t.Implements(textMarshalerType) || pt.Implements(textMarshalerType)
}

type fieldTag struct {
	name string
	opts []string
	skip bool
}

func (ft fieldTag) has(opt string) bool {
	for _, o := range ft.opts {
		if o == opt {
			return true
		}
	}
	return false
}

// parseTag reads the serde tag, falling back to the json tag.
func parseTag(sf reflect.StructField) fieldTag {
	raw, ok := sf.Tag.Lookup("serde")
	if !ok {
		raw, ok = sf.Tag.Lookup("json")
	}
	if !ok {
		return fieldTag{}
	}
	if raw == "-" {
		return fieldTag{skip: true}
	}
	parts := strings.Split(raw, ",")
	return fieldTag{name: parts[0], opts: parts[1:]}
}
