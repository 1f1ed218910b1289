package persistence

// UnitOfWork bundles the identity and snapshot caches for one logical unit
// of work. Repositories sharing a UnitOfWork observe one live instance per
// aggregate identity; independent units of work must not share one.
type UnitOfWork struct {
	Identities *IdentityMap
	Snapshots  *SnapshotMap
}

// NewUnitOfWork creates fresh caches for one unit of work.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Identities: NewIdentityMap(),
		Snapshots:  NewSnapshotMap(),
	}
}
