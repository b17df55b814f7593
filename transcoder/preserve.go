package transcoder

import (
	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
)

// Preserve carries a host value through the trait system unchanged. Encoding
// it yields Value itself; decoding into it captures the input value without
// inspecting it. Other serializers and deserializers reject it.
type Preserve struct {
	Value host.Value
}

type hostSink interface {
	setHostValue(v host.Value)
}

type hostSource interface {
	hostValue() host.Value
}

func (p Preserve) Serialize(s serde.Serializer) error {
	sink, ok := s.(hostSink)
	if !ok {
		return errors.Unsupported(errors.PhaseEncode, "Preserve can only be encoded to a host value")
	}
	v := p.Value
	if v == nil {
		v = host.Undefined
	}
	sink.setHostValue(v)
	return nil
}

func (p *Preserve) Deserialize(d serde.Deserializer) error {
	src, ok := d.(hostSource)
	if !ok {
		return errors.Unsupported(errors.PhaseDecode, "Preserve can only be decoded from a host value")
	}
	p.Value = src.hostValue()
	return nil
}
