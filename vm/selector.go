package vm

import "sync"

// SelectorTable interns selector names to numeric IDs.
//
// The table is append-only and safe for concurrent use.
type SelectorTable struct {
	mu     sync.RWMutex
	byName map[string]int // name -> ID
	byID   []string       // ID -> name
}

// NewSelectorTable creates a new empty selector table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{
		byName: make(map[string]int),
		byID:   make([]string, 0, 64),
	}
}

// Intern returns the ID for a selector name, creating a new ID if needed.
func (st *SelectorTable) Intern(name string) int {
	// Fast path: read-only lookup
	st.mu.RLock()
	if id, ok := st.byName[name]; ok {
		st.mu.RUnlock()
		return id
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := st.byName[name]; ok {
		return id
	}

	id := len(st.byID)
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the ID for a selector name, or -1 if not found.
func (st *SelectorTable) Lookup(name string) int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if id, ok := st.byName[name]; ok {
		return id
	}
	return -1
}

// Name returns the selector name for an ID, or "" if invalid.
func (st *SelectorTable) Name(id int) string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if id < 0 || id >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}

// Len returns the number of interned selectors.
func (st *SelectorTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID)
}
