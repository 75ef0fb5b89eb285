package trampoline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// rmutex is a mutex that the owning goroutine may lock again. Each Lock
// must be paired with an Unlock on the same goroutine.
type rmutex struct {
	mu    sync.Mutex
	owner atomic.Int64 // goroutine id of the holder, 0 when free
	depth int          // guarded by mu
}

// currentGoroutine returns the calling goroutine's id. Runtime ids start at
// 1 and owner 0 marks the lock free, so a 0 from goid (it cannot read the id
// on this toolchain) is fatal.
func currentGoroutine() int64 {
	id := goid.Get()
	if id == 0 {
		panic("trampoline: goroutine id unavailable on " + runtime.Version())
	}
	return id
}

func (m *rmutex) Lock() {
	id := currentGoroutine()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
}

func (m *rmutex) Unlock() {
	if m.owner.Load() != currentGoroutine() {
		panic("trampoline: unlock of rmutex not held by this goroutine")
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}
