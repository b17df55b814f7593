package transcoder

import "github.com/wippyai/hostserde/host"

// Config controls how the Encoder represents maps and wide integers.
// The zero value is the default configuration.
type Config struct {
	mapsAsObjects     bool
	largeIntsAsBigInt bool
}

// DefaultConfig returns the default encoder configuration: maps become host
// Maps and 64/128-bit integers must fit the safe integer range.
func DefaultConfig() Config {
	return Config{}
}

// WithMapsAsObjects makes maps encode as plain objects. Every key must then
// encode to a host string.
func (c Config) WithMapsAsObjects(b bool) Config {
	c.mapsAsObjects = b
	return c
}

// WithLargeIntsAsBigInt makes every 64 and 128-bit integer encode as a
// BigInt, whatever its magnitude.
func (c Config) WithLargeIntsAsBigInt(b bool) Config {
	c.largeIntsAsBigInt = b
	return c
}

func (c Config) MapsAsObjects() bool     { return c.mapsAsObjects }
func (c Config) LargeIntsAsBigInt() bool { return c.largeIntsAsBigInt }

// EncoderOption configures an Encoder beyond its Config.
type EncoderOption func(*Encoder)

// WithHeap allocates byte buffers on h instead of the default heap.
func WithHeap(h *host.Heap) EncoderOption {
	return func(e *Encoder) {
		if h != nil {
			e.heap = h
		}
	}
}

// WithNameCache replaces the encoder's field-name cache.
func WithNameCache(c NameCache) EncoderOption {
	return func(e *Encoder) {
		if c != nil {
			e.names = c
		}
	}
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxDepth bounds the nesting depth the Decoder will follow into
// arrays, objects, maps and enum payloads. Zero or less disables the limit.
func WithMaxDepth(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxDepth = n
	}
}
