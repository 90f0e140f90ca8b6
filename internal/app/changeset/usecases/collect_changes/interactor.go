package collect_changes

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// Option configures an Interactor.
type Option func(*Interactor)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interactor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithChangeSetFactory replaces the default change set factory.
func WithChangeSetFactory(factory contracts.ChangeSetFactory) Option {
	return func(i *Interactor) {
		if factory != nil {
			i.factory = factory
		}
	}
}

// WithTransientReferencePolicy sets how references to unsaved entities are reported.
func WithTransientReferencePolicy(policy TransientReferencePolicy) Option {
	return func(i *Interactor) {
		i.policy = policy
	}
}

// Interactor handles the collect changes use case: it turns the pending
// changes of a unit of work into change set trees rooted at the given entities.
//
// An Interactor holds no state between calls and may be shared.
type Interactor struct {
	uow     contracts.UnitOfWork
	meta    contracts.Metadata
	factory contracts.ChangeSetFactory
	policy  TransientReferencePolicy
	logger  *slog.Logger
}

// NewInteractor creates a new collect changes interactor.
func NewInteractor(uow contracts.UnitOfWork, meta contracts.Metadata, opts ...Option) *Interactor {
	i := &Interactor{
		uow:     uow,
		meta:    meta,
		factory: NewChangeSetFactory(meta, uow),
		policy:  TransientReferenceDeferred,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// pass is the state of one Execute call.
type pass struct {
	*Interactor
	ws     *workspace
	fields *fieldFactory
}

// Execute collects the change sets of entities sharing one type.
// Entities without changes are omitted; the result keeps the input order.
func (i *Interactor) Execute(ctx context.Context, entities ...any) ([]*domain.ChangeSet, error) {
	if len(entities) == 0 {
		return nil, nil
	}

	// 1. Validate input
	if err := validateEntities(entities); err != nil {
		return nil, err
	}

	rootType, err := i.meta.TypeName(entities[0])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root type: %w", err)
	}

	i.logger.DebugContext(ctx, "collecting changes", "type", rootType, "entities", len(entities))

	// 2. Compute pending changes
	if err := i.uow.ComputeChanges(); err != nil {
		return nil, fmt.Errorf("failed to compute changes: %w", err)
	}

	// 3. Index schedules and reachable associations
	c := &pass{
		Interactor: i,
		ws:         newWorkspace(),
		fields:     &fieldFactory{meta: i.meta, uow: i.uow, policy: i.policy, logger: i.logger},
	}
	if err := c.ws.indexSchedules(i.uow, i.meta); err != nil {
		return nil, err
	}
	c.ws.reachable, err = findReachable(i.meta, c.ws, rootType, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	i.logger.DebugContext(ctx, "indexed schedules",
		"updated_types", len(c.ws.updates),
		"inserted", len(c.ws.inserted),
		"owners_with_removals", len(c.ws.deletions),
		"reachable", len(c.ws.reachable),
	)

	// 4. Collect per entity
	changeSets := make([]*domain.ChangeSet, 0, len(entities))
	for _, entity := range entities {
		changeSet, err := i.factory.CreateChangeSet(entity, "")
		if err != nil {
			return nil, err
		}

		if i.uow.EntityState(entity) == contracts.StateNew {
			err = c.collectFull(ctx, entity, changeSet, true)
		} else {
			err = c.collectDiff(ctx, entity, changeSet, c.ws.reachable)
		}
		if err != nil {
			return nil, err
		}

		if !changeSet.IsEmpty() {
			changeSets = append(changeSets, changeSet)
		}
	}

	i.logger.DebugContext(ctx, "collected changes", "type", rootType, "change_sets", len(changeSets))

	return changeSets, nil
}

// validateEntities checks that all entities are non-nil pointers of one type.
func validateEntities(entities []any) error {
	var first reflect.Type
	for idx, entity := range entities {
		if entity == nil {
			return fmt.Errorf("%w: entity %d is nil", domain.ErrInvalidEntity, idx)
		}
		rv := reflect.ValueOf(entity)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("%w: entity %d is %T", domain.ErrInvalidEntity, idx, entity)
		}
		if first == nil {
			first = rv.Type()
			continue
		}
		if rv.Type() != first {
			return fmt.Errorf("%w: got %s and %s", domain.ErrInvalidEntity, first, rv.Type())
		}
	}
	return nil
}

// collectFull records every field of the entity as set (insert) or cleared
// (delete), descending into loaded associations.
func (c *pass) collectFull(ctx context.Context, entity any, changeSet *domain.ChangeSet, insert bool) error {
	if !c.ws.visit(entity) {
		return nil
	}

	typeName, err := c.meta.TypeName(entity)
	if err != nil {
		return err
	}
	names, err := c.meta.FieldNames(typeName)
	if err != nil {
		return fmt.Errorf("failed to list fields of %s: %w", typeName, err)
	}

	for _, name := range names {
		value, err := c.meta.FieldValue(entity, name)
		if err != nil {
			return fmt.Errorf("failed to read %s.%s: %w", typeName, name, err)
		}

		if c.meta.IsAssociation(typeName, name) {
			for _, member := range loadedMembers(value) {
				if err := c.attachFull(ctx, member, name, changeSet, insert); err != nil {
					return err
				}
			}
			continue
		}

		oldValue, newValue := any(nil), value
		if !insert {
			oldValue, newValue = value, nil
		}

		field, err := c.fields.build(ctx, typeName, name, oldValue, newValue)
		if err != nil {
			return err
		}
		if field != nil {
			changeSet.AddField(field)
		}
	}

	return nil
}

// collectDiff records the reported deltas of the entity, then descends into the
// reachable associations and the removed association members.
func (c *pass) collectDiff(ctx context.Context, entity any, changeSet *domain.ChangeSet, reachable []association) error {
	if !c.ws.visit(entity) {
		return nil
	}

	typeName, err := c.meta.TypeName(entity)
	if err != nil {
		return err
	}

	for _, delta := range c.uow.EntityChangeSet(entity) {
		field, err := c.fields.build(ctx, typeName, delta.Name, delta.Old, delta.New)
		if err != nil {
			return err
		}
		if field != nil {
			changeSet.AddField(field)
		}
	}

	if c.ws.hasUpdates() {
		for _, assoc := range reachable {
			value, err := c.meta.FieldValue(entity, assoc.field)
			if err != nil {
				return fmt.Errorf("failed to read %s.%s: %w", typeName, assoc.field, err)
			}

			for _, member := range loadedMembers(value) {
				if c.ws.isInserted(member) {
					err = c.attachFull(ctx, member, assoc.field, changeSet, true)
				} else {
					err = c.attachDiff(ctx, member, assoc.field, changeSet, assoc.nested)
				}
				if err != nil {
					return err
				}
			}
		}
	}

	for _, removed := range c.ws.removalsOf(entity) {
		for _, member := range removed.members {
			if err := c.attachFull(ctx, member, removed.field, changeSet, false); err != nil {
				return err
			}
		}
	}

	return nil
}

// skipsMember reports whether the association member is of a type the
// metadata does not persist. Such members are never descended into.
func (c *pass) skipsMember(ctx context.Context, member any, field string) (bool, error) {
	typeName, err := c.meta.TypeName(member)
	if err != nil {
		return false, err
	}
	if !c.meta.IsTransient(typeName) {
		return false, nil
	}
	c.logger.DebugContext(ctx, "skipped transient association member", "field", field, "type", typeName)
	return true, nil
}

func (c *pass) attachFull(ctx context.Context, member any, field string, parent *domain.ChangeSet, insert bool) error {
	if skip, err := c.skipsMember(ctx, member, field); err != nil || skip {
		return err
	}
	child, err := c.factory.CreateChangeSet(member, domain.JoinPath(parent.Namespace(), field))
	if err != nil {
		return err
	}
	if err := c.collectFull(ctx, member, child, insert); err != nil {
		return err
	}
	return c.attach(parent, child)
}

func (c *pass) attachDiff(ctx context.Context, member any, field string, parent *domain.ChangeSet, reachable []association) error {
	if skip, err := c.skipsMember(ctx, member, field); err != nil || skip {
		return err
	}
	child, err := c.factory.CreateChangeSet(member, domain.JoinPath(parent.Namespace(), field))
	if err != nil {
		return err
	}
	if err := c.collectDiff(ctx, member, child, reachable); err != nil {
		return err
	}
	return c.attach(parent, child)
}

func (c *pass) attach(parent, child *domain.ChangeSet) error {
	if child.IsEmpty() {
		return nil
	}
	return parent.AddRelatedChangeSet(child)
}
