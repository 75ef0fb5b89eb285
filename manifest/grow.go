package manifest

import (
	"github.com/chazu/revcall/sig"
	"github.com/chazu/revcall/trampoline"
)

// Change records one provisioning adjustment made by Grow.
type Change struct {
	Signature string
	From      int // 0 for newly added families
	To        int
}

// Grow raises slot counts from observed registry usage. A family that ran
// out of slots grows to the larger of Count*factor and Bound+Misses.
// Signatures that were requested but never provisioned are appended with
// enough slots for every failed request. Signatures the generator cannot
// compile are returned in skipped and left out.
func (m *Manifest) Grow(usage []trampoline.FamilyUsage, factor int) (changes []Change, skipped []string) {
	if factor < 1 {
		factor = 1
	}
	index := make(map[string]int, len(m.Families))
	for i, f := range m.Families {
		index[f.Signature] = i
	}

	for _, u := range usage {
		if u.Misses == 0 {
			continue
		}
		if i, ok := index[u.Signature]; ok {
			f := &m.Families[i]
			want := max(f.Count*factor, u.Bound+u.Misses)
			if want > f.Count {
				changes = append(changes, Change{Signature: f.Signature, From: f.Count, To: want})
				f.Count = want
			}
			continue
		}

		sh, err := sig.Parse(u.Signature)
		if err != nil || sh.HasStruct() {
			skipped = append(skipped, u.Signature)
			continue
		}
		m.Families = append(m.Families, Family{Signature: u.Signature, Count: u.Misses})
		index[u.Signature] = len(m.Families) - 1
		changes = append(changes, Change{Signature: u.Signature, To: u.Misses})
	}
	return changes, skipped
}
