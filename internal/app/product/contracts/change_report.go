package contracts

import (
	"context"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/visitors"
)

// ChangeTracker snapshots loaded entities so later edits can be diffed.
type ChangeTracker interface {
	// Track records the current state of the entities and their loaded associations
	Track(entities ...any) error

	// Clear forgets every tracked entity
	Clear()
}

// ChangeReporter renders the pending changes of an entity graph.
type ChangeReporter interface {
	// Execute returns the flattened changes rooted at the entity
	Execute(ctx context.Context, entity any) ([]visitors.Change, error)
}
