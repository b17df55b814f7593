// Package wasmmem stores host byte buffers in WebAssembly linear memory.
//
// A Store instantiates a code-free module that exports a single memory and
// hands out regions of it through host.FreeList. Plug it into a heap to keep
// every encoded byte buffer inside the wasm address space:
//
//	store, err := wasmmem.New(ctx, &wasmmem.Config{MaxPages: 256})
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
//	enc := transcoder.NewEncoder(transcoder.DefaultConfig(), transcoder.WithHeap(store.NewHeap()))
//
// The memory grows page by page as allocations require.
package wasmmem
