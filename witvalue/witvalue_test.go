package witvalue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/jsonser"
	"github.com/wippyai/hostserde/transcoder"
)

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

var (
	pointType = named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}})
	shapeType = named("shape", &wit.Variant{Cases: []wit.Case{
		{Name: "circle", Type: wit.F64{}},
		{Name: "dot"},
		{Name: "poly", Type: &wit.TypeDef{Kind: &wit.List{Type: pointType}}},
	}})
	colorType = named("color", &wit.Enum{Cases: []wit.EnumCase{
		{Name: "red"}, {Name: "green"}, {Name: "blue"},
	}})
	permsType = named("perms", &wit.Flags{Flags: []wit.Flag{
		{Name: "read"}, {Name: "write"}, {Name: "exec"},
	}})
	itemType = named("item", &wit.Record{Fields: []wit.Field{
		{Name: "at", Type: pointType},
		{Name: "shape", Type: shapeType},
		{Name: "color", Type: colorType},
		{Name: "perms", Type: permsType},
		{Name: "note", Type: &wit.TypeDef{Kind: &wit.Option{Type: wit.String{}}}},
		{Name: "status", Type: &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}, Err: wit.String{}}}},
		{Name: "pair", Type: &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.String{}, wit.U8{}}}}},
		{Name: "blob", Type: &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}},
		{Name: "initial", Type: wit.Char{}},
	}})
)

func item() map[string]any {
	return map[string]any{
		"at":      map[string]any{"x": int32(1), "y": int32(-2)},
		"shape":   map[string]any{"poly": []any{map[string]any{"x": int32(0), "y": int32(0)}}},
		"color":   uint32(2),
		"perms":   uint64(0b101),
		"note":    nil,
		"status":  map[string]any{"err": "boom"},
		"pair":    []any{"k", uint8(9)},
		"blob":    []byte{1, 2},
		"initial": 'z',
	}
}

func toHost(t *testing.T, v Value) host.Value {
	t.Helper()
	out, err := transcoder.NewEncoder(transcoder.DefaultConfig()).Encode(v)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return out
}

func kindOf(err error) errors.Kind {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestValue_RoundTrip(t *testing.T) {
	in := item()
	out := toHost(t, Value{Type: itemType, V: in})

	back, err := Decode(transcoder.NewDecoder().Deserializer(out), itemType)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_HostShapes(t *testing.T) {
	in := item()
	delete(in, "blob")
	typ := named("slim", &wit.Record{Fields: itemType.Kind.(*wit.Record).Fields[:7]})

	got, err := jsonser.MarshalString(Value{Type: typ, V: in})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"at":{"x":1,"y":-2},"shape":{"poly":[{"x":0,"y":0}]},"color":"blue","perms":["read","exec"],"status":{"err":"boom"},"pair":["k",9]}`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	s, _, err := host.Stringify(toHost(t, Value{Type: typ, V: in}))
	if err != nil {
		t.Fatal(err)
	}
	if s != want {
		t.Errorf("host value stringified to %s", s)
	}
}

func TestValue_Cases(t *testing.T) {
	tests := []struct {
		value any
		name  string
		want  string
	}{
		{map[string]any{"circle": 1.5}, "payload", `{"circle":1.5}`},
		{map[string]any{"dot": nil}, "unit", `"dot"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jsonser.MarshalString(Value{Type: shapeType, V: tt.value})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			back, err := Decode(transcoder.NewDecoder().Deserializer(toHost(t, Value{Type: shapeType, V: tt.value})), shapeType)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.value, back); diff != "" {
				t.Errorf("decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValue_Coercion(t *testing.T) {
	// Lifted values that went through JSON carry float64 numbers.
	v := Value{Type: pointType, V: map[string]any{"x": float64(3), "y": -4}}
	got, err := jsonser.MarshalString(v)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"x":3,"y":-4}` {
		t.Errorf("got %s", got)
	}
}

func TestValue_EncodeErrors(t *testing.T) {
	u8 := wit.U8{}
	tests := []struct {
		value Value
		name  string
		kind  errors.Kind
	}{
		{Value{Type: u8, V: 300}, "u8 overflow", errors.KindTypeMismatch},
		{Value{Type: wit.Bool{}, V: 1}, "bool from int", errors.KindTypeMismatch},
		{Value{Type: colorType, V: uint32(3)}, "enum index", errors.KindInvalidData},
		{Value{Type: permsType, V: uint64(1 << 3)}, "undeclared flag", errors.KindInvalidData},
		{Value{Type: shapeType, V: map[string]any{"square": 1}}, "unknown case", errors.KindInvalidData},
		{Value{Type: &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{u8, u8}}}, V: []any{uint8(1)}}, "short tuple", errors.KindInvalidLength},
		{Value{Type: wit.Char{}, V: "ab"}, "two-rune char", errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsonser.Marshal(tt.value)
			if kindOf(err) != tt.kind {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	object := func(kv ...any) host.Value {
		o := host.NewObject()
		for i := 0; i < len(kv); i += 2 {
			o.Set(kv[i].(string), kv[i+1].(host.Value))
		}
		return o
	}
	tests := []struct {
		input host.Value
		typ   wit.Type
		name  string
		kind  errors.Kind
	}{
		{object("x", host.Number(1)), pointType, "missing field", errors.KindMissingField},
		{host.String("purple"), colorType, "unknown enum case", errors.KindUnknownVariant},
		{host.NewArray(host.String("delete")), permsType, "unknown flag", errors.KindCustom},
		{host.Number(256), wit.U8{}, "u8 range", errors.KindOverflow},
		{host.NewArray(host.String("a")), &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.String{}, wit.U8{}}}}, "short tuple", errors.KindInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(transcoder.NewDecoder().Deserializer(tt.input), tt.typ)
			if kindOf(err) != tt.kind {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestDecodeValue_OptionalField(t *testing.T) {
	typ := named("opt", &wit.Record{Fields: []wit.Field{
		{Name: "a", Type: &wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}}},
	}})
	v, err := DecodeValue(transcoder.NewDecoder().Deserializer(host.NewObject()), typ)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != typ {
		t.Error("type not carried")
	}
	if diff := cmp.Diff(map[string]any{"a": nil}, v.V); diff != "" {
		t.Error(diff)
	}
}
