package transcoder

import (
	"sync"
	"sync/atomic"
)

// NameCache interns property names written by the Encoder so that objects
// built from the same struct type share one copy of each key.
type NameCache interface {
	Intern(name string) string
}

// SyncCache is a NameCache safe for concurrent use by several encoders.
type SyncCache struct {
	names  sync.Map
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewSyncCache() *SyncCache {
	return &SyncCache{}
}

func (c *SyncCache) Intern(name string) string {
	if v, ok := c.names.Load(name); ok {
		c.hits.Add(1)
		return v.(string)
	}
	v, loaded := c.names.LoadOrStore(name, name)
	if loaded {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v.(string)
}

// Stats returns the number of lookups served from the cache and the number
// that stored a new name.
func (c *SyncCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len counts the interned names.
func (c *SyncCache) Len() int {
	n := 0
	c.names.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// NullCache interns nothing.
type NullCache struct{}

func (NullCache) Intern(name string) string { return name }

var sharedNames = NewSyncCache()
