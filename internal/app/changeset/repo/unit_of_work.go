package repo

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
)

// snapshot is the state of a managed entity when it was tracked.
type snapshot struct {
	scalars map[string]any
	toOne   map[string]any
	toMany  map[string][]any
}

// UnitOfWork implements contracts.UnitOfWork by comparing the current entity
// graph with snapshots taken by Track. Entities are identified by type name
// and primary key; an entity without a key, or with a key that was never
// tracked, is new.
//
// A UnitOfWork is not safe for concurrent use.
type UnitOfWork struct {
	meta *GormMetadata

	roots     []any
	snapshots map[string]*snapshot

	changes     map[any][]contracts.FieldDelta
	insertions  []any
	updates     []any
	collections []contracts.CollectionUpdate
}

// NewUnitOfWork creates an empty unit of work.
func NewUnitOfWork(meta *GormMetadata) *UnitOfWork {
	u := &UnitOfWork{meta: meta}
	u.Clear()
	return u
}

// Track snapshots the entities and everything reachable from them through
// loaded associations.
func (u *UnitOfWork) Track(entities ...any) error {
	visited := make(map[any]bool)
	for _, entity := range entities {
		if err := u.track(entity, visited); err != nil {
			return err
		}
		u.roots = append(u.roots, entity)
	}
	return nil
}

// Clear forgets all tracked entities and computed changes.
func (u *UnitOfWork) Clear() {
	u.roots = nil
	u.snapshots = make(map[string]*snapshot)
	u.reset()
}

func (u *UnitOfWork) reset() {
	u.changes = make(map[any][]contracts.FieldDelta)
	u.insertions = nil
	u.updates = nil
	u.collections = nil
}

func (u *UnitOfWork) track(entity any, visited map[any]bool) error {
	if visited[entity] {
		return nil
	}
	visited[entity] = true

	typeName, err := u.meta.TypeName(entity)
	if err != nil {
		return err
	}
	key, err := u.keyOf(entity)
	if err != nil {
		return err
	}

	snap := &snapshot{
		scalars: make(map[string]any),
		toOne:   make(map[string]any),
		toMany:  make(map[string][]any),
	}

	names, err := u.meta.FieldNames(typeName)
	if err != nil {
		return err
	}
	for _, name := range names {
		value, err := u.meta.FieldValue(entity, name)
		if err != nil {
			return err
		}

		switch {
		case !u.meta.IsAssociation(typeName, name):
			snap.scalars[name] = copyValue(value)
		case u.isToMany(typeName, name):
			members := membersOf(value)
			snap.toMany[name] = members
			for _, member := range members {
				if err := u.track(member, visited); err != nil {
					return err
				}
			}
		default:
			target := referenceOf(value)
			snap.toOne[name] = target
			if target != nil {
				if err := u.track(target, visited); err != nil {
					return err
				}
			}
		}
	}

	if key != "" {
		u.snapshots[key] = snap
	}
	return nil
}

// ComputeChanges walks the graph from the tracked entities and rebuilds the
// deltas and schedules. Entities that are neither tracked nor reachable from a
// tracked entity are not scheduled; they are reported as new by EntityState.
func (u *UnitOfWork) ComputeChanges() error {
	u.reset()

	visited := make(map[any]bool)
	for _, entity := range u.roots {
		if err := u.compute(entity, visited); err != nil {
			return err
		}
	}
	return nil
}

func (u *UnitOfWork) compute(entity any, visited map[any]bool) error {
	if visited[entity] {
		return nil
	}
	visited[entity] = true

	typeName, err := u.meta.TypeName(entity)
	if err != nil {
		return err
	}
	names, err := u.meta.FieldNames(typeName)
	if err != nil {
		return err
	}

	snap := u.snapshotOf(entity)
	if snap == nil {
		u.insertions = append(u.insertions, entity)
	}

	var deltas []contracts.FieldDelta
	var next []any
	for _, name := range names {
		value, err := u.meta.FieldValue(entity, name)
		if err != nil {
			return err
		}

		switch {
		case !u.meta.IsAssociation(typeName, name):
			if snap == nil {
				if !isNil(value) && !u.unsetIdentifier(typeName, name, value) {
					deltas = append(deltas, contracts.FieldDelta{Name: name, New: value})
				}
				continue
			}
			if old := snap.scalars[name]; !sameValue(old, value) {
				deltas = append(deltas, contracts.FieldDelta{Name: name, Old: old, New: value})
			}

		case u.isToMany(typeName, name):
			members := membersOf(value)
			next = append(next, members...)
			if snap != nil {
				u.diffCollection(entity, name, snap.toMany[name], members)
			}

		default:
			target := referenceOf(value)
			if target != nil {
				next = append(next, target)
			}
			if snap == nil {
				if target != nil {
					deltas = append(deltas, contracts.FieldDelta{Name: name, New: target})
				}
				continue
			}
			if old := snap.toOne[name]; !u.sameEntity(old, target) {
				deltas = append(deltas, contracts.FieldDelta{Name: name, Old: old, New: target})
			}
		}
	}

	if len(deltas) > 0 {
		u.changes[entity] = deltas
		if snap != nil {
			u.updates = append(u.updates, entity)
		}
	}

	for _, member := range next {
		if err := u.compute(member, visited); err != nil {
			return err
		}
	}
	return nil
}

// diffCollection schedules the members added to and removed from one to-many
// association, compared by identity key.
func (u *UnitOfWork) diffCollection(owner any, field string, before, after []any) {
	beforeKeys := make(map[string]bool, len(before))
	for _, member := range before {
		if key, err := u.keyOf(member); err == nil && key != "" {
			beforeKeys[key] = true
		}
	}
	afterKeys := make(map[string]bool, len(after))

	update := contracts.CollectionUpdate{Owner: owner, Field: field}
	for _, member := range after {
		key, err := u.keyOf(member)
		if err == nil && key != "" {
			afterKeys[key] = true
		}
		if key == "" || !beforeKeys[key] {
			update.Inserted = append(update.Inserted, member)
		}
	}
	for _, member := range before {
		if key, err := u.keyOf(member); err == nil && key != "" && !afterKeys[key] {
			update.Deleted = append(update.Deleted, member)
		}
	}

	if len(update.Inserted) > 0 || len(update.Deleted) > 0 {
		u.collections = append(u.collections, update)
	}
}

func (u *UnitOfWork) EntityChangeSet(entity any) []contracts.FieldDelta {
	return u.changes[entity]
}

func (u *UnitOfWork) ScheduledInsertions() []any {
	return u.insertions
}

func (u *UnitOfWork) ScheduledUpdates() []any {
	return u.updates
}

func (u *UnitOfWork) ScheduledCollectionUpdates() []contracts.CollectionUpdate {
	return u.collections
}

func (u *UnitOfWork) EntityState(entity any) contracts.EntityState {
	if u.Contains(entity) {
		return contracts.StateManaged
	}
	return contracts.StateNew
}

func (u *UnitOfWork) Contains(entity any) bool {
	return u.snapshotOf(entity) != nil
}

func (u *UnitOfWork) EntityIdentifier(entity any) (map[string]any, bool) {
	if !u.Contains(entity) {
		return nil, false
	}
	values, err := u.meta.IdentifierValues(entity)
	if err != nil {
		return nil, false
	}
	return values, true
}

func (u *UnitOfWork) snapshotOf(entity any) *snapshot {
	key, err := u.keyOf(entity)
	if err != nil || key == "" {
		return nil
	}
	return u.snapshots[key]
}

// keyOf returns the identity key of an entity, or "" when any identifier
// field is unset.
func (u *UnitOfWork) keyOf(entity any) (string, error) {
	typeName, err := u.meta.TypeName(entity)
	if err != nil {
		return "", err
	}
	values, err := u.meta.IdentifierValues(entity)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}

	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var sb strings.Builder
	sb.WriteString(typeName)
	for _, field := range fields {
		value := values[field]
		if isNil(value) || reflect.Indirect(reflect.ValueOf(value)).IsZero() {
			return "", nil
		}
		s, err := cast.ToStringE(reflect.Indirect(reflect.ValueOf(value)).Interface())
		if err != nil {
			return "", fmt.Errorf("failed to read %s identifier %s: %w", typeName, field, err)
		}
		sb.WriteByte('#')
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (u *UnitOfWork) sameEntity(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	ka, errA := u.keyOf(a)
	kb, errB := u.keyOf(b)
	return errA == nil && errB == nil && ka != "" && ka == kb
}

func (u *UnitOfWork) unsetIdentifier(typeName, field string, value any) bool {
	return u.meta.IsIdentifier(typeName, field) && reflect.ValueOf(value).IsZero()
}

func (u *UnitOfWork) isToMany(typeName, field string) bool {
	kind, err := u.meta.DeclaredKind(typeName, field)
	return err == nil && kind != contracts.KindEntity
}

// membersOf lists the entities of a to-many association value as pointers.
func membersOf(value any) []any {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	members := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		switch {
		case elem.Kind() == reflect.Pointer && !elem.IsNil():
			members = append(members, elem.Interface())
		case elem.Kind() == reflect.Struct && elem.CanAddr():
			members = append(members, elem.Addr().Interface())
		}
	}
	return members
}

// referenceOf returns a to-one association value as a pointer, or nil.
func referenceOf(value any) any {
	if isNil(value) {
		return nil
	}
	if reflect.ValueOf(value).Kind() != reflect.Pointer {
		return nil
	}
	return value
}

// copyValue detaches a scalar from the entity so later mutations through a
// shared pointer or slice do not change the snapshot.
func copyValue(value any) any {
	if isNil(value) {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		cp := reflect.New(rv.Elem().Type())
		cp.Elem().Set(rv.Elem())
		return cp.Interface()
	case reflect.Slice:
		if b, ok := value.([]byte); ok {
			return bytes.Clone(b)
		}
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		return cp.Interface()
	}
	return value
}

// sameValue compares two scalars, looking through pointers.
func sameValue(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

func deref(value any) any {
	if isNil(value) {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
