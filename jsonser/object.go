package jsonser

import (
	"slices"
	"strconv"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

type member struct {
	key   string
	value []byte
}

// objectWriter buffers members and writes them in host property order:
// array-index keys ascending, then the rest in insertion order. Undefined
// members are left out, as the host does when stringifying.
type objectWriter struct {
	s       *Serializer
	members []member
	variant string
	key     string
	pending bool
}

func (s *Serializer) object() *objectWriter {
	return &objectWriter{s: s}
}

func (w *objectWriter) set(key string, text []byte, undef bool) {
	i := slices.IndexFunc(w.members, func(m member) bool { return m.key == key })
	switch {
	case undef && i >= 0:
		w.members = slices.Delete(w.members, i, i+1)
	case undef:
	case i >= 0:
		w.members[i].value = text
	default:
		w.members = append(w.members, member{key: key, value: text})
	}
}

func (w *objectWriter) SerializeField(key string, v any) error {
	text, undef, err := w.s.capture(key, v)
	if err != nil {
		return err
	}
	w.set(key, text, undef)
	return nil
}

func (w *objectWriter) SkipField(string) error { return nil }

func (w *objectWriter) SerializeKey(k any) error {
	if w.pending {
		return errors.InvalidData(errors.PhaseEncode, w.s.path, "map key serialized twice without a value")
	}
	key, err := stringKey(k, w.s.path)
	if err != nil {
		return err
	}
	w.key, w.pending = key, true
	return nil
}

func (w *objectWriter) SerializeValue(v any) error {
	if !w.pending {
		return errors.InvalidData(errors.PhaseEncode, w.s.path, "map value serialized without a key")
	}
	w.pending = false
	return w.SerializeField(w.key, v)
}

func (w *objectWriter) End() error {
	st := w.s.stream
	if w.variant != "" {
		st.WriteObjectStart()
		st.WriteRaw(host.QuoteJSON(w.variant))
		st.WriteRaw(":")
	}
	st.WriteObjectStart()
	for i, m := range ordered(w.members) {
		if i > 0 {
			st.WriteMore()
		}
		st.WriteRaw(host.QuoteJSON(m.key))
		st.WriteRaw(":")
		st.WriteRaw(string(m.value))
	}
	st.WriteObjectEnd()
	if w.variant != "" {
		st.WriteObjectEnd()
	}
	return nil
}

func ordered(members []member) []member {
	var index, rest []member
	for _, m := range members {
		if _, ok := arrayIndex(m.key); ok {
			index = append(index, m)
		} else {
			rest = append(rest, m)
		}
	}
	if len(index) == 0 {
		return members
	}
	slices.SortStableFunc(index, func(a, b member) int {
		x, _ := arrayIndex(a.key)
		y, _ := arrayIndex(b.key)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	return append(index, rest...)
}

// arrayIndex reports whether k is the canonical form of an integer in
// [0, 2^32-2].
func arrayIndex(k string) (uint32, bool) {
	n, err := strconv.ParseUint(k, 10, 32)
	if err != nil || n == 1<<32-1 || strconv.FormatUint(n, 10) != k {
		return 0, false
	}
	return uint32(n), true
}

// stringKey resolves a map key to the property name the host would use.
// Only values that encode to host strings qualify.
func stringKey(k any, path []string) (string, error) {
	c, err := serde.ToContent(k)
	if err != nil {
		return "", err
	}
	for c.Kind == serde.ContentNewtype || c.Kind == serde.ContentSome {
		c = *c.Inner
	}
	switch c.Kind {
	case serde.ContentString:
		return c.Str, nil
	case serde.ContentChar:
		return string(c.Char), nil
	}
	return "", errors.NonStringMapKey(path, c.Describe())
}
