package hostserde

import (
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/serde"
	"github.com/wippyai/hostserde/transcoder"
)

var (
	defaultEncoder = transcoder.NewEncoder(transcoder.DefaultConfig())
	defaultDecoder = transcoder.NewDecoder()
)

// ToValue converts v into a host value with the default configuration.
// The static type T is kept, so a registered enum interface encodes with
// its tagging convention even when v holds the concrete variant.
func ToValue[T any](v T) (host.Value, error) {
	return defaultEncoder.Encode(serde.Of(v))
}

// ToValueWith converts v using cfg.
func ToValueWith[T any](v T, cfg transcoder.Config, opts ...transcoder.EncoderOption) (host.Value, error) {
	return transcoder.NewEncoder(cfg, opts...).Encode(serde.Of(v))
}

// FromValue decodes v into a new T.
func FromValue[T any](v host.Value) (T, error) {
	return transcoder.DecodeAs[T](defaultDecoder, v)
}

// FromValueInto decodes v into the value target points to.
func FromValueInto(v host.Value, target any) error {
	return defaultDecoder.Decode(v, target)
}
