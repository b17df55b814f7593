// Package hostserde converts typed Go values to and from dynamic host values.
//
// Host values (package host) model the values of a dynamically typed
// runtime: numbers, strings, booleans, null and undefined, arrays, ordered
// objects, Maps, byte buffers and arbitrary-precision integers. This package
// is the convenience entry point; the conversion itself lives in
// transcoder and is driven by the trait contract in serde.
//
// # Architecture Overview
//
//	hostserde/           ToValue, ToValueWith, FromValue, FromValueInto
//	├── transcoder/      Encoder, Decoder, access adapters, Config
//	├── serde/           Serializer/Deserializer contract, reflection driver, enums
//	├── host/            Dynamic value model, inspector, JSON, heap
//	│   └── handle/      Reference-counted handle table for heap buffers
//	├── wasmmem/         Heap storage in wazero linear memory
//	├── jsonser/         Reference JSON serializer
//	├── witvalue/        WIT-typed values through the trait contract
//	├── interchange/     YAML, JSONC and CBOR bridges for host values
//	└── errors/          Structured error types with value paths
//
// # Quick Start
//
//	type Point struct {
//	    X int32 `serde:"x"`
//	    Y int32 `serde:"y"`
//	}
//
//	v, err := hostserde.ToValue(Point{X: 1, Y: 2})
//	// v is a *host.Object {x: 1, y: 2}
//
//	p, err := hostserde.FromValue[Point](v)
//
// # Configuration
//
// By default maps encode as host Maps and 64-bit integers must lie within
// ±(2^53-1). Both can be changed:
//
//	cfg := transcoder.DefaultConfig().
//	    WithMapsAsObjects(true).
//	    WithLargeIntsAsBigInt(true)
//	v, err := hostserde.ToValueWith(data, cfg)
//
// # Enums
//
// Sum types are interfaces registered with serde together with their
// variants and a tagging convention (external, internal, adjacent or
// untagged). See the serde package documentation.
package hostserde
