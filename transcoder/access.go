package transcoder

import (
	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

// arraySeq walks an Array by index.
type arraySeq struct {
	d   *deserializer
	arr *host.Array
	i   int
}

func newArraySeq(d *deserializer, arr *host.Array) *arraySeq {
	return &arraySeq{d: d, arr: arr}
}

func (s *arraySeq) NextElement(seed serde.Seed) (bool, error) {
	if s.i >= s.arr.Len() {
		return false, nil
	}
	elem, err := s.d.child(indexSeg(s.i), s.arr.Get(s.i))
	if err != nil {
		return false, err
	}
	s.i++
	return true, elem.fail(seed(elem))
}

func (s *arraySeq) SizeHint() int { return s.arr.Len() - s.i }

// iterSeq walks any host iterator.
type iterSeq struct {
	d  *deserializer
	it host.Iterator
	i  int
}

func newIterSeq(d *deserializer, it host.Iterator) *iterSeq {
	return &iterSeq{d: d, it: it}
}

func (s *iterSeq) NextElement(seed serde.Seed) (bool, error) {
	v, ok, err := s.it.Next()
	if err != nil {
		return false, s.d.fail(err)
	}
	if !ok {
		return false, nil
	}
	elem, err := s.d.child(indexSeg(s.i), v)
	if err != nil {
		return false, err
	}
	s.i++
	return true, elem.fail(seed(elem))
}

func (s *iterSeq) SizeHint() int { return -1 }

// pairMap presents key/value pairs in input order. Exactly one value is
// pending between NextKey and NextValue.
type pairMap struct {
	d       *deserializer
	next    func() (k, v host.Value, ok bool, err error)
	value   host.Value
	seg     string
	hint    int
	pending bool
}

// newPairMap reads an iterator whose items are [key, value] arrays.
func newPairMap(d *deserializer, it host.Iterator) *pairMap {
	i := 0
	return &pairMap{d: d, hint: -1, next: func() (host.Value, host.Value, bool, error) {
		item, ok, err := it.Next()
		if err != nil || !ok {
			return nil, nil, false, err
		}
		seg := indexSeg(i)
		i++
		pair, isArr := item.(*host.Array)
		if !isArr {
			return nil, nil, false, errors.TypeMismatch(errors.PhaseDecode, appendPath(d.path, seg), "a [key, value] pair", host.Describe(item))
		}
		if pair.Len() != 2 {
			return nil, nil, false, errors.InvalidLength(errors.PhaseDecode, appendPath(d.path, seg), pair.Len(), "a [key, value] pair")
		}
		return pair.Get(0), pair.Get(1), true, nil
	}}
}

// newEntryMap reads own enumerable properties as string-keyed pairs.
func newEntryMap(d *deserializer, entries []host.Entry) *pairMap {
	i := 0
	return &pairMap{d: d, hint: len(entries), next: func() (host.Value, host.Value, bool, error) {
		if i >= len(entries) {
			return nil, nil, false, nil
		}
		e := entries[i]
		i++
		return host.String(e.Key), e.Value, true, nil
	}}
}

func (m *pairMap) NextKey(seed serde.Seed) (bool, error) {
	if m.pending {
		return false, errors.InvalidData(errors.PhaseDecode, m.d.path, "map key requested while a value is pending")
	}
	k, v, ok, err := m.next()
	if err != nil {
		return false, m.d.fail(err)
	}
	if !ok {
		return false, nil
	}
	if m.hint > 0 {
		m.hint--
	}
	if k == nil {
		k = host.Undefined
	}
	m.value, m.seg, m.pending = v, keySeg(k), true
	key := m.d.sibling(k)
	return true, key.fail(seed(key))
}

func (m *pairMap) NextValue(seed serde.Seed) error {
	if !m.pending {
		return errors.InvalidData(errors.PhaseDecode, m.d.path, "map value requested without a key")
	}
	m.pending = false
	val, err := m.d.child(m.seg, m.value)
	m.value = nil
	if err != nil {
		return err
	}
	return val.fail(seed(val))
}

func (m *pairMap) SizeHint() int { return m.hint }

// objectFields presents the properties of obj named in fields, in the
// order of fields. Absent and undefined properties are skipped.
type objectFields struct {
	d       *deserializer
	obj     *host.Object
	fields  []string
	value   host.Value
	name    string
	pending bool
}

func newObjectFields(d *deserializer, obj *host.Object, fields []string) *objectFields {
	return &objectFields{d: d, obj: obj, fields: fields}
}

func (o *objectFields) NextKey(seed serde.Seed) (bool, error) {
	if o.pending {
		return false, errors.InvalidData(errors.PhaseDecode, o.d.path, "field requested while a value is pending")
	}
	for len(o.fields) > 0 {
		name := o.fields[0]
		o.fields = o.fields[1:]
		v, ok := o.obj.Lookup(name)
		if !ok || v == host.Undefined {
			continue
		}
		o.value, o.name, o.pending = v, name, true
		key := o.d.sibling(host.String(name))
		return true, key.fail(seed(key))
	}
	return false, nil
}

func (o *objectFields) NextValue(seed serde.Seed) error {
	if !o.pending {
		return errors.InvalidData(errors.PhaseDecode, o.d.path, "field value requested without a key")
	}
	o.pending = false
	val, err := o.d.child(o.name, o.value)
	o.value = nil
	if err != nil {
		return err
	}
	return val.fail(seed(val))
}

func (o *objectFields) SizeHint() int { return len(o.fields) }

// enumPayload is the EnumAccess for a variant tag and its payload.
type enumPayload struct {
	tag     *deserializer
	payload *deserializer
}

func (e *enumPayload) Variant(seed serde.Seed) (serde.VariantAccess, error) {
	if err := seed(e.tag); err != nil {
		return nil, e.tag.fail(err)
	}
	return &variantPayload{d: e.payload}, nil
}

// variantPayload decodes the payload once the variant is chosen.
type variantPayload struct {
	d *deserializer
}

type unitPayload struct {
	serde.Expect
}

func (unitPayload) VisitUnit() error { return nil }

func (p *variantPayload) UnitVariant() error {
	return p.d.DeserializeUnit(unitPayload{Expect: "unit variant"})
}

func (p *variantPayload) NewtypeVariant(seed serde.Seed) error {
	return p.d.fail(seed(p.d))
}

func (p *variantPayload) TupleVariant(length int, v serde.Visitor) error {
	return p.d.DeserializeTuple(length, v)
}

func (p *variantPayload) StructVariant(fields []string, v serde.Visitor) error {
	return p.d.DeserializeStruct("", fields, v)
}
