package transcoder

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

type command interface{ isCommand() }

type quit struct{}

type move struct {
	X int32 `serde:"x"`
	Y int32 `serde:"y"`
}

type write string

type recolor struct {
	_ struct{} `serde:",tuple"`
	R uint8
	G uint8
	B uint8
}

func (quit) isCommand()    {}
func (move) isCommand()    {}
func (write) isCommand()   {}
func (recolor) isCommand() {}

type reading interface{ isReading() }

type celsius float64

type kelvin float64

func (celsius) isReading() {}
func (kelvin) isReading()  {}

type (
	extCommand   interface{ command }
	intCommand   interface{ command }
	adjCommand   interface{ command }
	untagCommand interface{ command }
)

func init() {
	serde.MustRegisterEnum[extCommand]("Command", serde.External(),
		serde.Unit[quit]("Quit"),
		serde.Struct[move]("Move"),
		serde.Newtype[write]("Write"),
		serde.Tuple[recolor]("Recolor"),
	)
	serde.MustRegisterEnum[intCommand]("Command", serde.Internal("type"),
		serde.Unit[quit]("Quit"),
		serde.Struct[move]("Move"),
		serde.Newtype[write]("Write"),
	)
	serde.MustRegisterEnum[adjCommand]("Command", serde.Adjacent("t", "c"),
		serde.Unit[quit]("Quit"),
		serde.Struct[move]("Move"),
		serde.Newtype[write]("Write"),
		serde.Tuple[recolor]("Recolor"),
	)
	serde.MustRegisterEnum[untagCommand]("Command", serde.Untagged(),
		serde.Unit[quit]("Quit"),
		serde.Tuple[recolor]("Recolor"),
		serde.Struct[move]("Move"),
		serde.Newtype[write]("Write"),
	)
	serde.MustRegisterEnum[reading]("Reading", serde.Untagged(),
		serde.Newtype[celsius]("Celsius"),
		serde.Newtype[kelvin]("Kelvin"),
	)
}

// hostRoundTrip encodes v, checks its JSON form and decodes it back.
func hostRoundTrip[T any](t *testing.T, v T, wantJSON string) T {
	t.Helper()
	out, err := NewEncoder(DefaultConfig()).Encode(serde.Of(v))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := stringify(t, out); got != wantJSON {
		t.Errorf("encoded %s, want %s", got, wantJSON)
	}
	back, err := DecodeAs[T](NewDecoder(), out)
	if err != nil {
		t.Fatalf("Decode of %s failed: %v", wantJSON, err)
	}
	return back
}

func TestRoundTrip_Enums(t *testing.T) {
	tests := []struct {
		value command
		name  string
		ext   string
		adj   string
		untag string
	}{
		{quit{}, "unit", `"Quit"`, `{"t":"Quit"}`, `undefined`},
		{move{X: 1, Y: -2}, "struct", `{"Move":{"x":1,"y":-2}}`, `{"t":"Move","c":{"x":1,"y":-2}}`, `{"x":1,"y":-2}`},
		{write("hi"), "newtype", `{"Write":"hi"}`, `{"t":"Write","c":"hi"}`, `"hi"`},
		{recolor{R: 1, G: 2, B: 3}, "tuple", `{"Recolor":[1,2,3]}`, `{"t":"Recolor","c":[1,2,3]}`, `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run("external/"+tt.name, func(t *testing.T) {
			got := hostRoundTrip[extCommand](t, tt.value, tt.ext)
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("got %#v, want %#v", got, tt.value)
			}
		})
		t.Run("adjacent/"+tt.name, func(t *testing.T) {
			got := hostRoundTrip[adjCommand](t, tt.value, tt.adj)
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("got %#v, want %#v", got, tt.value)
			}
		})
		t.Run("untagged/"+tt.name, func(t *testing.T) {
			got := hostRoundTrip[untagCommand](t, tt.value, tt.untag)
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("got %#v, want %#v", got, tt.value)
			}
		})
	}
}

func TestRoundTrip_InternallyTagged(t *testing.T) {
	if got := hostRoundTrip[intCommand](t, quit{}, `{"type":"Quit"}`); got != (quit{}) {
		t.Errorf("got %#v", got)
	}
	if got := hostRoundTrip[intCommand](t, move{X: 3, Y: 4}, `{"type":"Move","x":3,"y":4}`); got != (move{X: 3, Y: 4}) {
		t.Errorf("got %#v", got)
	}

	// The tag may appear anywhere among the fields.
	in := object("x", host.Number(5), "type", host.String("Move"), "y", host.Number(6))
	if got := decodeInto[intCommand](t, in); got != (move{X: 5, Y: 6}) {
		t.Errorf("got %#v", got)
	}

	_, err := NewEncoder(DefaultConfig()).Encode(serde.Of[intCommand](write("x")))
	if err == nil {
		t.Error("a string payload cannot carry an internal tag")
	}

	_, err = DecodeAs[intCommand](NewDecoder(), object("x", host.Number(1)))
	if kindOf(err) != errors.KindMissingField {
		t.Errorf("missing tag: %v", err)
	}
}

func TestDecoder_ExternalEnumShapes(t *testing.T) {
	tests := []struct {
		input host.Value
		name  string
		kind  errors.Kind
	}{
		{object("Move", object("x", host.Number(1), "y", host.Number(2)), "Write", host.String("a")), "two properties", errors.KindInvalidLength},
		{host.NewObject(), "no properties", errors.KindInvalidLength},
		{host.Number(1), "number", errors.KindTypeMismatch},
		{host.String("Jump"), "unknown variant", errors.KindUnknownVariant},
		{object("Quit", host.Number(1)), "unit with payload", errors.KindTypeMismatch},
		{host.String("Move"), "bare struct variant", errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAs[extCommand](NewDecoder(), tt.input); kindOf(err) != tt.kind {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
		})
	}

	// A bare string names a unit variant; an explicit null payload is accepted too.
	for _, in := range []host.Value{host.String("Quit"), object("Quit", host.Null)} {
		if got := decodeInto[extCommand](t, in); got != (quit{}) {
			t.Errorf("%s decoded to %#v", stringify(t, in), got)
		}
	}
}

func TestDecoder_UntaggedFirstMatchWins(t *testing.T) {
	// Both variants accept a number; the earlier declaration decides.
	if got := decodeInto[reading](t, host.Number(300)); got != celsius(300) {
		t.Errorf("got %#v", got)
	}

	// Move rejects a third element, so the sequence falls through to Recolor.
	got := decodeInto[untagCommand](t, numbers(7, 8, 9))
	if !reflect.DeepEqual(got, recolor{R: 7, G: 8, B: 9}) {
		t.Errorf("got %#v", got)
	}
	if got := decodeInto[untagCommand](t, numbers(7, 8)); got != (move{X: 7, Y: 8}) {
		t.Errorf("got %#v", got)
	}

	_, err := DecodeAs[untagCommand](NewDecoder(), host.Bool(true))
	if kindOf(err) != errors.KindCustom {
		t.Errorf("expected no-match error, got %v", err)
	}
}

func TestRoundTrip_Nested(t *testing.T) {
	type inventory struct {
		Tags    map[string]string `serde:"tags"`
		Note    *string           `serde:"note"`
		Name    string            `serde:"name"`
		Counts  []uint16          `serde:"counts"`
		Corners [2]move           `serde:"corners"`
		Blob    []byte            `serde:"blob"`
		Ratio   float64           `serde:"ratio"`
		Active  bool              `serde:"active"`
	}
	in := inventory{
		Name:    "depot",
		Counts:  []uint16{1, 65535},
		Tags:    map[string]string{"zone": "b"},
		Corners: [2]move{{X: 0, Y: 0}, {X: 10, Y: 20}},
		Blob:    []byte("raw"),
		Ratio:   0.25,
		Active:  true,
	}

	out, err := NewEncoder(DefaultConfig()).Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeAs[inventory](NewDecoder(), out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_BigIntMode(t *testing.T) {
	type wide struct {
		I  int64         `serde:"i"`
		U  uint64        `serde:"u"`
		LI serde.Int128  `serde:"li"`
		LU serde.Uint128 `serde:"lu"`
	}
	in := wide{I: -1 << 62, U: 1<<64 - 1, LI: serde.Int128{Hi: -5, Lo: 3}, LU: serde.Uint128{Hi: 9, Lo: 1}}

	out, err := NewEncoder(DefaultConfig().WithLargeIntsAsBigInt(true)).Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(*host.Object).Get("i").(host.BigInt); !ok {
		t.Errorf("i = %s", host.Describe(out.(*host.Object).Get("i")))
	}
	back, err := DecodeAs[wide](NewDecoder(), out)
	if err != nil {
		t.Fatal(err)
	}
	if back != in {
		t.Errorf("got %+v, want %+v", back, in)
	}
}

func TestPreserve(t *testing.T) {
	type envelope struct {
		Payload Preserve `serde:"payload"`
		ID      string   `serde:"id"`
	}
	payload := object("anything", host.NewSet(host.Number(1)))
	in := object("id", host.String("e1"), "payload", payload)

	env := decodeInto[envelope](t, in)
	if env.Payload.Value != payload {
		t.Fatal("payload was not passed through by identity")
	}

	out, err := NewEncoder(DefaultConfig()).Encode(env)
	if err != nil {
		t.Fatal(err)
	}
	if out.(*host.Object).Get("payload") != payload {
		t.Error("encoded payload is not the original value")
	}

	if _, err := serde.ToContent(env); kindOf(err) != errors.KindUnsupported {
		t.Errorf("foreign serializer: %v", err)
	}
}
