package wasmmem

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostserde/host"
)

// PageSize is the WebAssembly page size in bytes.
const PageSize = 65536

// memoryModule is a module with no code that exports one memory of one
// initial page: (module (memory (export "memory") 1)).
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

// Config holds store creation options.
type Config struct {
	// InitialPages grows the memory to this many pages up front. 0 means 1.
	InitialPages uint32

	// MaxPages caps growth. 0 means the runtime default (65536 pages = 4GB).
	MaxPages uint32
}

// Store keeps host buffer contents in the linear memory of a wazero module
// instance. It implements host.Memory, host.MemorySizer and host.Allocator.
//
// Growing the memory may move it; slices returned by Read are only valid
// until the next allocation.
type Store struct {
	*host.FreeList
	runtime wazero.Runtime
	mem     api.Memory
}

// New instantiates the backing module and returns a ready store.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MaxPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MaxPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate memory module: %w", err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("memory module exports no memory")
	}

	s := &Store{runtime: rt, mem: mem}
	// offset 0 stays unused so a zero pointer never names a live region
	s.FreeList = host.NewFreeList(8, s.ensure)

	if cfg != nil && cfg.InitialPages > 1 {
		if err := s.ensure(cfg.InitialPages * PageSize); err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

// NewHeap returns a host heap whose buffers live in this store.
func (s *Store) NewHeap() *host.Heap {
	return host.NewHeap(s, s)
}

// Close releases the wazero runtime and its memory.
func (s *Store) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// Pages returns the current memory size in pages.
func (s *Store) Pages() uint32 {
	return s.mem.Size() / PageSize
}

func (s *Store) ensure(end uint32) error {
	size := s.mem.Size()
	if end <= size {
		return nil
	}
	delta := (end - size + PageSize - 1) / PageSize
	prev, ok := s.mem.Grow(delta)
	if !ok {
		return fmt.Errorf("grow memory by %d pages from %d: limit reached", delta, size/PageSize)
	}
	Logger().Debug("memory grown",
		zap.Uint32("from_pages", prev),
		zap.Uint32("to_pages", prev+delta))
	return nil
}

func (s *Store) Size() uint32 {
	return s.mem.Size()
}

func (s *Store) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := s.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (s *Store) Write(offset uint32, data []byte) error {
	if !s.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (s *Store) ReadU8(offset uint32) (uint8, error) {
	b, ok := s.mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return b, nil
}

func (s *Store) WriteU8(offset uint32, value uint8) error {
	if !s.mem.WriteByte(offset, value) {
		return fmt.Errorf("write out of bounds: offset=%d", offset)
	}
	return nil
}

var (
	_ host.Memory      = (*Store)(nil)
	_ host.MemorySizer = (*Store)(nil)
	_ host.Allocator   = (*Store)(nil)
)
