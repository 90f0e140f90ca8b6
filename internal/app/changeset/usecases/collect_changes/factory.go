package collect_changes

import (
	"fmt"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// ChangeSetFactory creates change sets named after the entity type. Entities
// in the unit of work identity map get their identifier attached.
type ChangeSetFactory struct {
	meta contracts.Metadata
	uow  contracts.UnitOfWork
}

// NewChangeSetFactory creates a new change set factory.
func NewChangeSetFactory(meta contracts.Metadata, uow contracts.UnitOfWork) *ChangeSetFactory {
	return &ChangeSetFactory{meta: meta, uow: uow}
}

// CreateChangeSet implements contracts.ChangeSetFactory.
func (f *ChangeSetFactory) CreateChangeSet(entity any, namespace string) (*domain.ChangeSet, error) {
	typeName, err := f.meta.TypeName(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entity type: %w", err)
	}

	var identifier *domain.EntityIdentifier
	if f.uow.Contains(entity) {
		if values, ok := f.uow.EntityIdentifier(entity); ok {
			identifier, err = newIdentifier(values)
			if err != nil {
				return nil, fmt.Errorf("failed to normalize %s identifier: %w", typeName, err)
			}
		}
	}

	return domain.NewChangeSet(typeName, identifier, namespace), nil
}
