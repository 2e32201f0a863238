package material

import (
	"sort"
	"sync"
)

// Registry maps material names to built materials. It replaces a process-wide
// table: callers create one and pass it to every Factory that should share
// definitions.
//
// Reads are safe from any number of goroutines. Writes are serialized; once
// Freeze has been called the registry only accepts re-registration of an
// identical definition, so concurrent constructions can never diverge.
type Registry struct {
	mu        sync.RWMutex
	materials map[string]*Material
	frozen    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{materials: make(map[string]*Material)}
}

// Lookup returns the material registered under name.
func (r *Registry) Lookup(name string) (*Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[name]
	return m, ok
}

// Register stores m under its name and returns the instance now held by the
// registry.
//
// If an equivalent definition is already present, the existing instance is
// returned so repeated construction keeps sharing one pointer. A diverging
// definition replaces the old one (last write wins) and replaced is true.
// A frozen registry refuses diverging or new definitions.
func (r *Registry) Register(m *Material) (stored *Material, replaced bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.materials[m.Name]; ok {
		if equivalent(old, m) {
			return old, false, nil
		}
		if r.frozen {
			return nil, false, ErrRegistryFrozen
		}
		r.materials[m.Name] = m
		return m, true, nil
	}
	if r.frozen {
		return nil, false, ErrRegistryFrozen
	}
	r.materials[m.Name] = m
	return m, false, nil
}

// Freeze makes the registry read-only for new or diverging definitions.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.materials))
	for n := range r.materials {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered materials.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.materials)
}
