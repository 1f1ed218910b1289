package persistence

import "reflect"

// Fields is the flat column map produced by dehydrating an aggregate.
type Fields map[string]any

// SnapshotMap caches the last field state known to have been written to
// storage for each aggregate identity. Snapshots are always replaced whole,
// never merged.
type SnapshotMap struct {
	entries map[string]map[string]Fields
}

// NewSnapshotMap creates an empty snapshot map.
func NewSnapshotMap() *SnapshotMap {
	return &SnapshotMap{entries: make(map[string]map[string]Fields)}
}

// Has reports whether a snapshot exists for the kind and id.
func (m *SnapshotMap) Has(kind, id string) bool {
	_, ok := m.Get(kind, id)
	return ok
}

// Get returns the snapshot for the kind and id.
func (m *SnapshotMap) Get(kind, id string) (Fields, bool) {
	snapshot, ok := m.entries[kind][id]
	return snapshot, ok
}

// Put stores a snapshot for the kind and id, replacing any previous one.
func (m *SnapshotMap) Put(kind, id string, snapshot Fields) {
	if m.entries[kind] == nil {
		m.entries[kind] = make(map[string]Fields)
	}
	m.entries[kind][id] = snapshot
}

// ToPersist returns the fields that need writing for the current state.
// Without a snapshot the full current state is returned (first write is a
// full insert). With a snapshot, only the pairs whose value differs from the
// snapshot are returned; an empty result means nothing changed.
func (m *SnapshotMap) ToPersist(kind, id string, current Fields) Fields {
	snapshot, ok := m.Get(kind, id)
	if !ok {
		return current
	}

	changed := Fields{}
	for column, value := range current {
		previous, exists := snapshot[column]
		if !exists || !reflect.DeepEqual(previous, value) {
			changed[column] = value
		}
	}

	return changed
}
