package serde

// Expect is the base visitor: every Visit method rejects its input with an
// invalid type error naming the expectation. Concrete visitors embed it and
// override what they accept.
type Expect string

func (e Expect) Expecting() string { return string(e) }

func (e Expect) VisitBool(v bool) error { return InvalidType(UnexpectedBool(v), string(e)) }

func (e Expect) VisitInt64(v int64) error { return InvalidType(UnexpectedInt(v), string(e)) }

func (e Expect) VisitUint64(v uint64) error { return InvalidType(UnexpectedUint(v), string(e)) }

func (e Expect) VisitInt128(v Int128) error { return InvalidType(UnexpectedBigInt(v), string(e)) }

func (e Expect) VisitUint128(v Uint128) error { return InvalidType(UnexpectedBigInt(v), string(e)) }

func (e Expect) VisitFloat64(v float64) error { return InvalidType(UnexpectedFloat(v), string(e)) }

func (e Expect) VisitChar(v rune) error { return InvalidType(UnexpectedChar(v), string(e)) }

func (e Expect) VisitString(v string) error { return InvalidType(UnexpectedString(v), string(e)) }

func (e Expect) VisitBytes([]byte) error { return InvalidType(UnexpectedBytes, string(e)) }

func (e Expect) VisitNone() error { return InvalidType(UnexpectedOption, string(e)) }

func (e Expect) VisitSome(Deserializer) error { return InvalidType(UnexpectedOption, string(e)) }

func (e Expect) VisitUnit() error { return InvalidType(UnexpectedUnit, string(e)) }

func (e Expect) VisitNewtype(Deserializer) error { return InvalidType(UnexpectedNewtype, string(e)) }

func (e Expect) VisitSeq(SeqAccess) error { return InvalidType(UnexpectedSeq, string(e)) }

func (e Expect) VisitMap(MapAccess) error { return InvalidType(UnexpectedMap, string(e)) }

func (e Expect) VisitEnum(EnumAccess) error { return InvalidType(UnexpectedEnum, string(e)) }

// IgnoredAny discards whatever it is given, recursing into collections so a
// streaming deserializer stays in sync.
type IgnoredAny struct{}

func (IgnoredAny) Expecting() string                   { return "anything at all" }
func (IgnoredAny) VisitBool(bool) error                { return nil }
func (IgnoredAny) VisitInt64(int64) error              { return nil }
func (IgnoredAny) VisitUint64(uint64) error            { return nil }
func (IgnoredAny) VisitInt128(Int128) error            { return nil }
func (IgnoredAny) VisitUint128(Uint128) error          { return nil }
func (IgnoredAny) VisitFloat64(float64) error          { return nil }
func (IgnoredAny) VisitChar(rune) error                { return nil }
func (IgnoredAny) VisitString(string) error            { return nil }
func (IgnoredAny) VisitBytes([]byte) error             { return nil }
func (IgnoredAny) VisitNone() error                    { return nil }
func (IgnoredAny) VisitUnit() error                    { return nil }
func (i IgnoredAny) VisitSome(d Deserializer) error    { return d.DeserializeIgnoredAny(i) }
func (i IgnoredAny) VisitNewtype(d Deserializer) error { return d.DeserializeIgnoredAny(i) }

func (i IgnoredAny) VisitSeq(a SeqAccess) error {
	for {
		ok, err := a.NextElement(Ignore)
		if err != nil || !ok {
			return err
		}
	}
}

func (i IgnoredAny) VisitMap(a MapAccess) error {
	for {
		ok, err := a.NextKey(Ignore)
		if err != nil || !ok {
			return err
		}
		if err := a.NextValue(Ignore); err != nil {
			return err
		}
	}
}

func (i IgnoredAny) VisitEnum(a EnumAccess) error {
	va, err := a.Variant(Ignore)
	if err != nil {
		return err
	}
	return va.NewtypeVariant(Ignore)
}

// Ignore is a Seed that skips one value.
func Ignore(d Deserializer) error {
	return d.DeserializeIgnoredAny(IgnoredAny{})
}
