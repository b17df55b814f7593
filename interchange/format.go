package interchange

import (
	"path/filepath"
	"strings"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
)

// Format names an input document format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted input formats.
var Formats = []Format{FormatJSON, FormatJSONC, FormatYAML}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json5":
		return FormatJSONC
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

type options struct {
	heap *host.Heap
}

// Option configures parsing.
type Option func(*options)

// WithHeap allocates byte buffers on h instead of the default heap.
func WithHeap(h *host.Heap) Option {
	return func(o *options) {
		if h != nil {
			o.heap = h
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{heap: host.DefaultHeap()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Parse reads data in the given format.
func Parse(format Format, data []byte, opts ...Option) (host.Value, error) {
	switch format {
	case FormatJSON:
		return host.ParseJSON(data)
	case FormatJSONC:
		return ParseJSONC(data)
	case FormatYAML:
		return ParseYAML(data, opts...)
	}
	return nil, errors.Unsupported(errors.PhaseHost, "input format "+string(format))
}
