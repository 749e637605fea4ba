package radio

import (
	"fmt"
	"sort"
	"sync"

	"github.com/opencps/mocodeplug/pkg/codeplug"
)

var (
	mu       sync.RWMutex
	byID     = map[string]*Model{}
	familyOf = map[string][]string{} // family -> model ids, insertion order
)

// Register adds m to the process-wide registry, replacing any prior
// registration under the same id (idempotent: a second Register with the
// same id has no observable effect beyond the replacement itself). Intended
// to be called only during package initialization; the registry is
// mutated only then and treated as read-only afterward.
func Register(m *Model) error {
	if err := m.finalize(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := byID[m.IDStr]; !exists {
		familyOf[m.Family] = append(familyOf[m.Family], m.IDStr)
	}
	byID[m.IDStr] = m
	return nil
}

// Lookup returns the model registered under id.
func Lookup(id string) (*Model, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := byID[id]
	return m, ok
}

// AllIDs returns every registered model id, sorted for deterministic output.
func AllIDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ByFamily groups registered model ids by family tag.
func ByFamily() map[string][]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string][]string, len(familyOf))
	for fam, ids := range familyOf {
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[fam] = cp
	}
	return out
}

// CreateDefaultCodeplug looks up id and builds its default codeplug.
func CreateDefaultCodeplug(id string) (*Model, *codeplug.Codeplug, error) {
	m, ok := Lookup(id)
	if !ok {
		return nil, nil, fmt.Errorf("unknown radio model %q", id)
	}
	cp, err := m.CreateDefault()
	if err != nil {
		return nil, nil, err
	}
	return m, cp, nil
}
