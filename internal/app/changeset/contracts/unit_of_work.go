package contracts

// EntityState is the persistence state of an entity as seen by the unit of work.
type EntityState int

const (
	// StateManaged entities are known to the unit of work and have an identity.
	StateManaged EntityState = iota
	// StateNew entities are scheduled for insertion and have no identity yet.
	StateNew
)

// FieldDelta is a raw old/new pair for one changed field of an entity.
type FieldDelta struct {
	Name string
	Old  any
	New  any
}

// CollectionUpdate describes the members inserted into and removed from one
// to-many association of an owner entity.
type CollectionUpdate struct {
	Owner    any
	Field    string
	Inserted []any
	Deleted  []any
}

// UnitOfWork is the dirty checker the collector reads pending changes from.
// Entities are passed as pointers and compared by identity.
type UnitOfWork interface {
	// ComputeChanges recomputes the deltas and schedules of all tracked entities
	ComputeChanges() error

	// EntityChangeSet returns the ordered field deltas of one entity
	EntityChangeSet(entity any) []FieldDelta

	// ScheduledInsertions returns the entities that will be inserted
	ScheduledInsertions() []any

	// ScheduledUpdates returns the entities that will be updated
	ScheduledUpdates() []any

	// ScheduledCollectionUpdates returns the pending to-many association changes
	ScheduledCollectionUpdates() []CollectionUpdate

	// EntityState classifies an entity as new or managed
	EntityState(entity any) EntityState

	// Contains reports whether the entity is in the identity map
	Contains(entity any) bool

	// EntityIdentifier returns the raw identifier values of a managed entity
	EntityIdentifier(entity any) (map[string]any, bool)
}
