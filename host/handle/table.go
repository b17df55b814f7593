package handle

import (
	"errors"
	"sync"
)

var (
	ErrClosed  = errors.New("handle table closed")
	ErrInvalid = errors.New("invalid handle")
)

// Table is a reference-counted handle table with a free list.
type Table struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value any
	tag   Tag
	refs  uint32
	valid bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert stores value with one reference and returns its handle.
func (t *Table) Insert(tag Tag, value any) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}

	e := entry{tag: tag, value: value, refs: 1, valid: true}

	var h Handle
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
	} else {
		t.entries = append(t.entries, e)
		h = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: h, Tag: tag, Value: value})
	return h, nil
}

// Get retrieves a live value by handle.
func (t *Table) Get(h Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(h)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// GetTagged retrieves a value only if it carries the expected tag.
func (t *Table) GetTagged(h Handle, tag Tag) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(h)
	if !ok || e.tag != tag {
		return nil, false
	}
	return e.value, true
}

// Retain adds a reference to a live handle.
func (t *Table) Retain(h Handle) error {
	t.mu.Lock()
	e, ok := t.lookup(h)
	if !ok {
		t.mu.Unlock()
		return ErrInvalid
	}
	e.refs++
	tag, value := e.tag, e.value
	t.mu.Unlock()

	t.notify(Event{Type: EventRetained, Handle: h, Tag: tag, Value: value})
	return nil
}

// Release drops a reference. When the count reaches zero the entry is
// removed and its value's Drop method, if any, is called.
func (t *Table) Release(h Handle) error {
	t.mu.Lock()
	e, ok := t.lookup(h)
	if !ok {
		t.mu.Unlock()
		return ErrInvalid
	}
	e.refs--
	if e.refs > 0 {
		t.mu.Unlock()
		return nil
	}

	tag, value := e.tag, e.value
	*e = entry{}
	t.freeList = append(t.freeList, h)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Handle: h, Tag: tag, Value: value})
	return nil
}

// Refs returns the current reference count, zero for dead handles.
func (t *Table) Refs(h Handle) uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.lookup(h)
	if !ok {
		return 0
	}
	return e.refs
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all live handles.
func (t *Table) Each(fn func(Handle, Tag, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.tag, e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close drops every live entry regardless of its count and stops
// accepting inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	entries := t.entries
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for i, e := range entries {
		if !e.valid {
			continue
		}
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
		t.notify(Event{Type: EventDropped, Handle: Handle(i + 1), Tag: e.tag, Value: e.value})
	}
	return nil
}

// lookup must be called with mu held.
func (t *Table) lookup(h Handle) (*entry, bool) {
	if h == 0 || int(h) > len(t.entries) {
		return nil, false
	}
	e := &t.entries[h-1]
	if !e.valid {
		return nil, false
	}
	return e, true
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
