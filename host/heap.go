package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host/handle"
)

const tagBuffer handle.Tag = 1

// Heap owns the storage of host byte buffers. Buffers live in a Memory,
// are carved out by an Allocator and are tracked by a handle table so that
// the region is freed when the last view over it is released.
type Heap struct {
	mem   Memory
	alloc Allocator
	table *handle.Table
}

// NewHeap creates a heap over the given store.
func NewHeap(mem Memory, alloc Allocator) *Heap {
	return &Heap{mem: mem, alloc: alloc, table: handle.NewTable()}
}

// NewGoHeap creates a heap over a fresh Go-slice store.
func NewGoHeap() *Heap {
	m := NewGoMemory()
	return NewHeap(m, m)
}

var defaultHeap = sync.OnceValue(NewGoHeap)

// DefaultHeap returns the process-wide heap used when none is configured.
func DefaultHeap() *Heap {
	return defaultHeap()
}

// Table exposes the handle table, mainly for observers.
func (h *Heap) Table() *handle.Table { return h.table }

// Live returns the number of buffers not yet released.
func (h *Heap) Live() int { return h.table.Len() }

// Close frees every buffer. Views over them become unreadable.
func (h *Heap) Close() error { return h.table.Close() }

type region struct {
	heap      *Heap
	ptr, size uint32
}

func (r *region) Drop() {
	r.heap.alloc.Free(r.ptr, r.size, 1)
	Logger().Debug("buffer freed", zap.Uint32("ptr", r.ptr), zap.Uint32("size", r.size))
}

// NewArrayBuffer allocates a zero-filled buffer of n bytes.
func (h *Heap) NewArrayBuffer(n int) (*ArrayBuffer, error) {
	return h.newBuffer(make([]byte, n))
}

// NewUint8Array allocates a buffer holding a copy of data and returns a view
// over all of it. The view owns the buffer.
func (h *Heap) NewUint8Array(data []byte) (*Uint8Array, error) {
	buf, err := h.newBuffer(data)
	if err != nil {
		return nil, err
	}
	return &Uint8Array{buf: buf, off: 0, n: buf.Len()}, nil
}

func (h *Heap) newBuffer(data []byte) (*ArrayBuffer, error) {
	if uint64(len(data)) > 1<<32-1 {
		return nil, errors.AllocationFailed(1<<32-1, nil)
	}
	size := uint32(len(data))
	ptr, err := h.alloc.Alloc(size, 1)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		if err := h.mem.Write(ptr, data); err != nil {
			h.alloc.Free(ptr, size, 1)
			return nil, errors.Wrap(errors.PhaseHost, errors.KindAllocation, err, "write buffer contents")
		}
	}
	r := &region{heap: h, ptr: ptr, size: size}
	hd, err := h.table.Insert(tagBuffer, r)
	if err != nil {
		h.alloc.Free(ptr, size, 1)
		return nil, errors.Wrap(errors.PhaseHost, errors.KindAllocation, err, "register buffer")
	}
	Logger().Debug("buffer allocated", zap.Uint32("handle", uint32(hd)), zap.Uint32("ptr", ptr), zap.Uint32("size", size))
	return &ArrayBuffer{heap: h, region: r, h: hd}, nil
}

// ArrayBuffer is a fixed-length host byte buffer.
type ArrayBuffer struct {
	heap   *Heap
	region *region
	h      handle.Handle
}

func (*ArrayBuffer) Kind() Kind { return KindObject }
func (*ArrayBuffer) hostValue() {}

func (b *ArrayBuffer) Len() int { return int(b.region.size) }

func (b *ArrayBuffer) Handle() handle.Handle { return b.h }

// Bytes returns a copy of the buffer contents.
func (b *ArrayBuffer) Bytes() ([]byte, error) {
	return b.read(0, b.region.size)
}

// View returns a Uint8Array over [off, off+n). The view holds its own reference.
func (b *ArrayBuffer) View(off, n int) (*Uint8Array, error) {
	if off < 0 || n < 0 || off+n > b.Len() {
		return nil, errors.InvalidData(errors.PhaseHost, nil, "view outside buffer bounds")
	}
	if err := b.heap.table.Retain(b.h); err != nil {
		return nil, released(err)
	}
	return &Uint8Array{buf: b, off: uint32(off), n: n}, nil
}

// Release gives up this reference to the buffer.
func (b *ArrayBuffer) Release() error {
	if err := b.live(); err != nil {
		return err
	}
	return b.heap.table.Release(b.h)
}

func (b *ArrayBuffer) live() error {
	v, ok := b.heap.table.GetTagged(b.h, tagBuffer)
	if !ok || v != b.region {
		return released(nil)
	}
	return nil
}

func (b *ArrayBuffer) read(off, n uint32) ([]byte, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	src, err := b.heap.mem.Read(b.region.ptr+off, n)
	if err != nil {
		return nil, err
	}
	copy(out, src)
	return out, nil
}

func (b *ArrayBuffer) write(off uint32, data []byte) error {
	if err := b.live(); err != nil {
		return err
	}
	return b.heap.mem.Write(b.region.ptr+off, data)
}

func released(cause error) error {
	return errors.New(errors.PhaseHost, errors.KindReleased).
		Detail("buffer has been released").
		Cause(cause).
		Build()
}

// Uint8Array is a byte view over an ArrayBuffer.
type Uint8Array struct {
	buf *ArrayBuffer
	off uint32
	n   int
}

func (*Uint8Array) Kind() Kind { return KindObject }
func (*Uint8Array) hostValue() {}

func (a *Uint8Array) Buffer() *ArrayBuffer { return a.buf }

func (a *Uint8Array) ByteOffset() int { return int(a.off) }

func (a *Uint8Array) Len() int { return a.n }

// Bytes returns a copy of the viewed bytes.
func (a *Uint8Array) Bytes() ([]byte, error) {
	return a.buf.read(a.off, uint32(a.n))
}

func (a *Uint8Array) At(i int) (byte, error) {
	if i < 0 || i >= a.n {
		return 0, errors.InvalidData(errors.PhaseHost, nil, "index outside view")
	}
	b, err := a.buf.read(a.off+uint32(i), 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (a *Uint8Array) SetAt(i int, v byte) error {
	if i < 0 || i >= a.n {
		return errors.InvalidData(errors.PhaseHost, nil, "index outside view")
	}
	return a.buf.write(a.off+uint32(i), []byte{v})
}

// Subarray returns a view over [start, end) of this view sharing the buffer.
func (a *Uint8Array) Subarray(start, end int) (*Uint8Array, error) {
	if start < 0 || end < start || end > a.n {
		return nil, errors.InvalidData(errors.PhaseHost, nil, "subarray outside view")
	}
	return a.buf.View(int(a.off)+start, end-start)
}

// Release gives up the view's reference to its buffer.
func (a *Uint8Array) Release() error {
	return a.buf.Release()
}

// Iterate yields each byte as a Number, read at iteration time.
func (a *Uint8Array) Iterate() Iterator {
	i := 0
	return IteratorFunc(func() (Value, bool, error) {
		if i >= a.n {
			return nil, false, nil
		}
		b, err := a.At(i)
		if err != nil {
			return nil, false, err
		}
		i++
		return Number(b), true, nil
	})
}

// ByteSource is implemented by host values whose bytes can be copied out.
type ByteSource interface {
	Value
	Len() int
	Bytes() ([]byte, error)
}
