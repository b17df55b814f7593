// Package handle provides the reference-counted handle table behind the host heap.
//
// Every heap allocation that outlives a single call (byte buffers, mostly) is
// registered in a Table and addressed by a Handle. Handles start with one
// reference; views add references with Retain and give them back with Release.
// When the count reaches zero the entry is freed and its value's Drop method runs.
//
//	table := handle.NewTable()
//	h, _ := table.Insert(tagBuffer, region)
//	_ = table.Retain(h)  // a view shares the region
//	_ = table.Release(h) // view gone
//	_ = table.Release(h) // region.Drop() runs, h is recycled
//
// Observers receive created, retained and dropped events, which is how the
// heap's leak accounting and the CLI's allocation trace are built.
package handle
