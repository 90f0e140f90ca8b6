package contracts

import "github.com/light-bringer/procat-changeset/internal/app/changeset/domain"

// ChangeSetFactory creates the change set node for one entity.
type ChangeSetFactory interface {
	// CreateChangeSet returns an empty change set for the entity at the given namespace
	CreateChangeSet(entity any, namespace string) (*domain.ChangeSet, error)
}
