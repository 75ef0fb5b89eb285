package trampoline

import (
	"sort"
	"time"
)

// ---------------------------------------------------------------------------
// Usage reporting
// ---------------------------------------------------------------------------

// FamilyUsage describes how much of one signature family has been claimed.
// Families that were requested but never provisioned appear with zero
// capacity and Misses set to the number of failed requests.
type FamilyUsage struct {
	Signature string
	FirstSlot int // -1 for unprovisioned signatures
	Capacity  int
	Bound     int
	Misses    int
}

// Exhausted reports whether every provisioned slot is claimed.
func (u FamilyUsage) Exhausted() bool {
	return u.Bound >= u.Capacity
}

// Snapshot is a point-in-time view of a registry, suitable for writing out
// and feeding back into provisioning.
type Snapshot struct {
	RegistryID string
	Taken      time.Time
	Slots      int
	Bound      int
	Families   []FamilyUsage
}

// Usage returns per-signature usage sorted by signature.
func (r *Registry) Usage() []FamilyUsage {
	if !r.ready.Load() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usageLocked()
}

func (r *Registry) usageLocked() []FamilyUsage {
	out := make([]FamilyUsage, 0, len(r.families)+len(r.unknown))
	for key, f := range r.families {
		out = append(out, FamilyUsage{
			Signature: key,
			FirstSlot: f.first,
			Capacity:  f.capacity,
			Bound:     r.cursor[key] - f.first,
			Misses:    f.misses,
		})
	}
	for key, n := range r.unknown {
		out = append(out, FamilyUsage{Signature: key, FirstSlot: -1, Misses: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })
	return out
}

// Snapshot captures the registry's current usage.
func (r *Registry) Snapshot() *Snapshot {
	s := &Snapshot{
		RegistryID: r.id.String(),
		Taken:      time.Now().UTC(),
	}
	if !r.ready.Load() {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Slots = len(r.table)
	s.Bound = len(r.byMethod)
	s.Families = r.usageLocked()
	return s
}
