// Package host models the dynamic values of a script host: the runtime on
// the other side of the marshaling boundary.
//
// A Value is one of Undefined, Null, Bool, Number, String, BigInt, *Array,
// *Object, *Map, *Set, *ArrayBuffer or *Uint8Array. Collections follow host
// semantics: objects enumerate array-index keys first, Maps and Sets key by
// SameValueZero, arrays read holes as Undefined.
//
// # Inspection
//
// Classify sorts any value into one Class (nullish, boolean, number, string,
// bigint, byte buffer, array, iterable, plain object). IsSafeInteger and
// SafeInt decide whether a Number holds an integer a double represents
// exactly. Iterate, Entries and AsBytes expose the iteration protocol,
// Object.entries and byte extraction.
//
// # Heap
//
// Byte buffers are stored in a Heap: a Memory (a linear byte store), an
// Allocator and a handle table that frees a region once its last view is
// released. NewGoHeap stores bytes in a Go slice; package wasmmem provides a
// store in WebAssembly linear memory.
//
//	heap := host.NewGoHeap()
//	view, _ := heap.NewUint8Array([]byte("abc")) // copies
//	defer view.Release()
//
// # JSON
//
// Stringify and ParseJSON follow JSON.stringify and JSON.parse, including
// undefined elision in objects, null for undefined array slots and "{}" for
// Maps and Sets.
package host
