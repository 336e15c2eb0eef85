package bridge

import (
	"sync"

	"github.com/signalhouse/wsjtx-bridge/engine"
)

// Handle identifies one engine instance across the facade. Zero is never a
// valid handle; slot indices start at one so a zeroed field can't alias a
// live instance.
type Handle uint32

// table maps handles to engine instances. Freed slots are recycled through
// a free list so the entries slice stays bounded by the peak instance
// count.
type table struct {
	entries  []tableEntry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type tableEntry struct {
	eng   *engine.Engine
	valid bool
}

func newTable() *table {
	return &table{
		entries:  make([]tableEntry, 0, 8),
		freeList: make([]Handle, 0, 4),
	}
}

// insert stores an engine and returns its handle, or 0 after Close.
func (t *table) insert(eng *engine.Engine) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}

	e := tableEntry{eng: eng, valid: true}

	if len(t.freeList) > 0 {
		handle := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[handle-1] = e
		return handle
	}

	t.entries = append(t.entries, e)
	return Handle(len(t.entries))
}

// get retrieves the engine for a handle.
func (t *table) get(handle Handle) (*engine.Engine, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return nil, false
	}

	e := t.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e.eng, true
}

// remove invalidates a handle and returns the engine for teardown. A stale
// or zero handle returns false; double removal is harmless.
func (t *table) remove(handle Handle) (*engine.Engine, bool) {
	if handle == 0 {
		return nil, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := handle - 1
	if int(idx) >= len(t.entries) {
		return nil, false
	}

	e := &t.entries[idx]
	if !e.valid {
		return nil, false
	}

	eng := e.eng
	e.valid = false
	e.eng = nil
	t.freeList = append(t.freeList, handle)

	return eng, true
}

// drain invalidates every handle and returns the live engines. The table
// rejects inserts afterwards.
func (t *table) drain() []*engine.Engine {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var engines []*engine.Engine
	for i := range t.entries {
		if t.entries[i].valid {
			engines = append(engines, t.entries[i].eng)
			t.entries[i].valid = false
			t.entries[i].eng = nil
		}
	}

	t.entries = nil
	t.freeList = nil
	return engines
}

// len returns the number of live handles.
func (t *table) len() int {
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
