package process_changes

import (
	"context"
	"fmt"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/visitors"
)

// Collector builds the change set trees of entities.
type Collector interface {
	Execute(ctx context.Context, entities ...any) ([]*domain.ChangeSet, error)
}

// VisitorFactory creates the visitor used for entities of one type.
type VisitorFactory interface {
	CreateVisitor(typeName string) *visitors.ProcessorFieldVisitor
}

// Interactor handles the process changes use case: it flattens the change set
// tree of an entity into a list of rendered changes.
type Interactor struct {
	collector Collector
	meta      contracts.Metadata
	factory   VisitorFactory
}

// NewInteractor creates a new process changes interactor.
func NewInteractor(collector Collector, meta contracts.Metadata, factory VisitorFactory) *Interactor {
	return &Interactor{
		collector: collector,
		meta:      meta,
		factory:   factory,
	}
}

// Execute returns the changes of the entity and of every related entity, parents
// before children.
func (i *Interactor) Execute(ctx context.Context, entity any) ([]visitors.Change, error) {
	// 1. Collect change sets
	changeSets, err := i.collector.Execute(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to collect changes: %w", err)
	}

	// 2. Create visitor for the root type
	typeName, err := i.meta.TypeName(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entity type: %w", err)
	}
	visitor := i.factory.CreateVisitor(typeName)

	// 3. Walk the trees
	process(changeSets, visitor)

	return visitor.Changes(), nil
}

func process(changeSets []*domain.ChangeSet, visitor domain.FieldVisitor) {
	for _, changeSet := range changeSets {
		changeSet.ApplyVisitor(visitor, "")
		process(changeSet.RelatedChangeSets(), visitor)
	}
}
