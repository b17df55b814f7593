package host

import (
	"fmt"
	"slices"
	"sync"

	"github.com/wippyai/hostserde/errors"
)

// Memory is a linear byte store holding the contents of host buffers.
// Slices returned by Read may alias the store and are only valid until the
// next Write or growth.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	WriteU8(offset uint32, value uint8) error
}

// MemorySizer provides the current size of a Memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out regions of a Memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// FreeList is a first-fit allocator over a growable address space.
// Grow is called with the required end offset whenever the space must expand.
type FreeList struct {
	grow func(end uint32) error
	free []span
	top  uint32
	mu   sync.Mutex
}

type span struct {
	start, size uint32
}

// NewFreeList creates an allocator whose first region starts at base.
func NewFreeList(base uint32, grow func(end uint32) error) *FreeList {
	return &FreeList{top: base, grow: grow}
}

func (f *FreeList) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}
	if align == 0 {
		align = 1
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.free {
		start := alignUp(s.start, align)
		pad := start - s.start
		if s.size < pad+size {
			continue
		}
		f.free = slices.Delete(f.free, i, i+1)
		if pad > 0 {
			f.insertFree(span{s.start, pad})
		}
		if rest := s.size - pad - size; rest > 0 {
			f.insertFree(span{start + size, rest})
		}
		return start, nil
	}

	start := alignUp(f.top, align)
	end := uint64(start) + uint64(size)
	if end > 1<<32-1 {
		return 0, errors.AllocationFailed(size, fmt.Errorf("address space exhausted"))
	}
	if err := f.grow(uint32(end)); err != nil {
		return 0, errors.AllocationFailed(size, err)
	}
	if start > f.top {
		f.insertFree(span{f.top, start - f.top})
	}
	f.top = uint32(end)
	return start, nil
}

func (f *FreeList) Free(ptr, size, _ uint32) {
	if size == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertFree(span{ptr, size})
}

// insertFree keeps the list sorted and coalesces neighbours.
func (f *FreeList) insertFree(s span) {
	i, _ := slices.BinarySearchFunc(f.free, s.start, func(a span, start uint32) int {
		switch {
		case a.start < start:
			return -1
		case a.start > start:
			return 1
		}
		return 0
	})
	f.free = slices.Insert(f.free, i, s)
	if i+1 < len(f.free) && f.free[i].start+f.free[i].size == f.free[i+1].start {
		f.free[i].size += f.free[i+1].size
		f.free = slices.Delete(f.free, i+1, i+2)
	}
	if i > 0 && f.free[i-1].start+f.free[i-1].size == f.free[i].start {
		f.free[i-1].size += f.free[i].size
		f.free = slices.Delete(f.free, i, i+1)
	}
}

func alignUp(offset, align uint32) uint32 {
	return (offset + align - 1) &^ (align - 1)
}

// GoMemory is a Memory and Allocator backed by a growable Go slice.
type GoMemory struct {
	*FreeList
	data []byte
	mu   sync.RWMutex
}

// NewGoMemory creates an empty Go-backed store. Offset 0 is never handed out.
func NewGoMemory() *GoMemory {
	m := &GoMemory{data: make([]byte, 8)}
	m.FreeList = NewFreeList(8, m.ensure)
	return m
}

func (m *GoMemory) ensure(end uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(end) <= len(m.data) {
		return nil
	}
	n := max(2*len(m.data), int(end))
	grown := make([]byte, n)
	copy(grown, m.data)
	m.data = grown
	return nil
}

func (m *GoMemory) Size() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint32(len(m.data))
}

func (m *GoMemory) Read(offset, length uint32) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	end := uint64(offset) + uint64(length)
	if end > uint64(len(m.data)) {
		return nil, outOfRange(offset, length, len(m.data))
	}
	return m.data[offset:end], nil
}

func (m *GoMemory) Write(offset uint32, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(m.data)) {
		return outOfRange(offset, uint32(len(data)), len(m.data))
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *GoMemory) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *GoMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func outOfRange(offset, length uint32, size int) error {
	return errors.New(errors.PhaseHost, errors.KindInvalidData).
		Detail("access [%d, %d) outside memory of %d bytes", offset, uint64(offset)+uint64(length), size).
		Build()
}
