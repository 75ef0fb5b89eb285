package trampoline

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/revcall/vm"
)

// Encoder computes the canonical signature key of a method.
type Encoder interface {
	Encode(m vm.Method, includeReceiver bool) (string, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger replaces the default "revcall.trampoline" logger.
func WithLogger(log commonlog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// ---------------------------------------------------------------------------
// Registry: trampoline table, signature index, binding cache
// ---------------------------------------------------------------------------

// Registry owns a fixed trampoline table and the bindings made from it.
//
// The table and the first-slot-per-signature index are built once by
// Initialize and are read-only afterwards. The signature cursors, the
// binding caches and the miss counters are guarded by a single reentrant
// lock: a method is bound at most once, and no two methods ever receive the
// same slot.
type Registry struct {
	id    uuid.UUID
	stubs []Stub
	enc   Encoder
	log   commonlog.Logger

	initOnce sync.Once
	ready    atomic.Bool

	// Built by Initialize, read-only afterwards.
	table    []Record
	families map[string]*family

	mu       rmutex
	closed   bool
	cursor   map[string]int         // signature -> next free slot
	byMethod map[vm.Method]*Record  // method -> claimed record
	byEntry  map[EntryPoint]*Record // entry point -> claimed record
	unknown  map[string]int         // signature -> failed lookups
}

// family is the static description of one signature's slot range plus the
// number of times it was found exhausted.
type family struct {
	first    int
	capacity int
	misses   int // guarded by Registry.mu
}

// New creates a registry over the generated stub table. Call Initialize
// before Resolve.
func New(stubs []Stub, enc Encoder, opts ...Option) *Registry {
	r := &Registry{
		id:    uuid.New(),
		stubs: stubs,
		enc:   enc,
		log:   commonlog.GetLogger("revcall.trampoline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID identifies this registry instance in snapshots and logs.
func (r *Registry) ID() uuid.UUID {
	return r.id
}

// Initialize builds the trampoline table and the signature index. It is
// safe to call more than once; only the first call does any work.
func (r *Registry) Initialize() {
	r.initOnce.Do(r.build)
}

func (r *Registry) build() {
	n := 0
	for n < len(r.stubs) && r.stubs[n].Entry != 0 {
		n++
	}

	r.table = make([]Record, n)
	r.families = make(map[string]*family)
	r.cursor = make(map[string]int)
	for i := 0; i < n; i++ {
		s := r.stubs[i]
		rec := &r.table[i]
		rec.slot, rec.entry, rec.signature = i, s.Entry, s.Signature

		f, ok := r.families[s.Signature]
		if !ok {
			f = &family{first: i}
			r.families[s.Signature] = f
			r.cursor[s.Signature] = i
		} else if f.first+f.capacity != i {
			r.log.Warningf("trampoline family %s is not contiguous at slot %d", s.Signature, i)
		}
		f.capacity++
	}

	r.byMethod = make(map[vm.Method]*Record, 2*n)
	r.byEntry = make(map[EntryPoint]*Record, 2*n)
	r.unknown = make(map[string]int)

	r.ready.Store(true)
	r.log.Infof("trampoline table ready: %d slots in %d signature families", n, len(r.families))
}

// Len returns the number of slots in the table, 0 before Initialize.
func (r *Registry) Len() int {
	if !r.ready.Load() {
		return 0
	}
	return len(r.table)
}

// RecordAt returns the record for a slot.
func (r *Registry) RecordAt(slot int) (*Record, bool) {
	if !r.ready.Load() || slot < 0 || slot >= len(r.table) {
		return nil, false
	}
	return &r.table[slot], true
}

// Resolve returns the native entry point that calls back into m, binding a
// free trampoline on first use.
//
// Instance methods cannot be carried through a fixed-shape trampoline; for
// them Resolve returns (0, nil) and allocates nothing. Provisioning failures
// are reported as *ResolveError wrapping ErrUnknownSignature or
// ErrFamilyExhausted.
func (r *Registry) Resolve(m vm.Method) (EntryPoint, error) {
	if m == nil || !m.IsStatic() {
		return 0, nil
	}
	if !r.ready.Load() {
		return 0, ErrNotInitialized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	if rec, ok := r.byMethod[m]; ok {
		return rec.entry, nil
	}

	key, err := r.enc.Encode(m, false)
	if err != nil {
		return 0, r.fail(&ResolveError{Method: m.FullName(), Err: err})
	}

	slot, ok := r.cursor[key]
	if !ok {
		r.unknown[key]++
		return 0, r.fail(&ResolveError{Method: m.FullName(), Signature: key, Err: ErrUnknownSignature})
	}

	// The cursor runs off the family once every slot is claimed; the next
	// slot then either does not exist or belongs to another shape.
	if slot >= len(r.table) || r.table[slot].entry == 0 || r.table[slot].signature != key {
		r.families[key].misses++
		return 0, r.fail(&ResolveError{Method: m.FullName(), Signature: key, Err: ErrFamilyExhausted})
	}

	rec := &r.table[slot]
	if !rec.bind(m) {
		// Only reachable if the table was built with overlapping families.
		r.families[key].misses++
		return 0, r.fail(&ResolveError{Method: m.FullName(), Signature: key, Err: ErrFamilyExhausted})
	}
	r.cursor[key] = slot + 1
	r.byMethod[m] = rec
	r.byEntry[rec.entry] = rec

	r.log.Debugf("bound %s to trampoline slot %d (%s) at %s", m.FullName(), slot, key, rec.entry)
	return rec.entry, nil
}

func (r *Registry) fail(err *ResolveError) error {
	r.log.Errorf("%s", err)
	return err
}

// LookupMethodByEntryPoint returns the method bound to the trampoline at e.
// It reports false for unknown pointers and for slots not yet claimed.
// Bindings outlive Close, so handed-out pointers keep resolving.
func (r *Registry) LookupMethodByEntryPoint(e EntryPoint) (vm.Method, bool) {
	if !r.ready.Load() {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byEntry[e]
	if !ok {
		return nil, false
	}
	return rec.Method(), true
}

// Bound returns the number of claimed slots.
func (r *Registry) Bound() int {
	if !r.ready.Load() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byMethod)
}

// Close tears the registry down. Later calls to Resolve return ErrClosed.
// Existing bindings stay and remain visible to lookups: native code may
// still hold the pointers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.log.Infof("trampoline registry %s closed with %d bindings", r.id, len(r.byMethod))
}
