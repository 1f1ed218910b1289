// Package persistence implements the diff-based persistence engine: an
// identity cache and a last-persisted-snapshot cache composed by a generic
// repository base that writes only changed fields.
//
// The caches are plain maps with no locking. They are scoped to a single
// unit of work (one request, one CLI invocation, one test case) and must be
// created fresh per unit of work; sharing them across concurrent units of
// work is a correctness bug, not a performance concern.
package persistence

// IdentityMap caches live aggregate instances keyed by aggregate kind and
// identity. Two lookups for the same key return the same instance, so a
// mutation through one holder is observed by all holders.
type IdentityMap struct {
	entries map[string]map[string]any
}

// NewIdentityMap creates an empty identity map.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{entries: make(map[string]map[string]any)}
}

// Has reports whether an instance is cached for the kind and id.
func (m *IdentityMap) Has(kind, id string) bool {
	_, ok := m.Get(kind, id)
	return ok
}

// Get returns the cached instance for the kind and id.
func (m *IdentityMap) Get(kind, id string) (any, bool) {
	instance, ok := m.entries[kind][id]
	return instance, ok
}

// Put caches an instance for the kind and id, replacing any previous entry.
func (m *IdentityMap) Put(kind, id string, instance any) {
	if m.entries[kind] == nil {
		m.entries[kind] = make(map[string]any)
	}
	m.entries[kind][id] = instance
}
