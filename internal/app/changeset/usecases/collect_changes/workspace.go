package collect_changes

import (
	"fmt"
	"reflect"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
)

// removal lists the members removed from one association of an owner.
type removal struct {
	field   string
	members []any
}

// workspace is the state of a single Execute call. It is built once from the
// unit of work schedules and discarded when the call returns.
type workspace struct {
	arena   map[any]int
	visited map[int]bool

	// updates holds every scheduled entity by type name, then arena index.
	updates map[string]map[int]any
	// inserted holds the arena indexes of entities scheduled for insertion.
	inserted map[int]bool
	// deletions holds the removed association members by owner arena index.
	deletions map[int][]removal

	reachable []association
}

func newWorkspace() *workspace {
	return &workspace{
		arena:     make(map[any]int),
		visited:   make(map[int]bool),
		updates:   make(map[string]map[int]any),
		inserted:  make(map[int]bool),
		deletions: make(map[int][]removal),
	}
}

// index returns the arena index of an entity, assigning one on first sight.
func (ws *workspace) index(entity any) int {
	if idx, ok := ws.arena[entity]; ok {
		return idx
	}
	idx := len(ws.arena)
	ws.arena[entity] = idx
	return idx
}

// visit marks the entity as processed and reports whether it was new.
func (ws *workspace) visit(entity any) bool {
	idx := ws.index(entity)
	if ws.visited[idx] {
		return false
	}
	ws.visited[idx] = true
	return true
}

func (ws *workspace) isInserted(entity any) bool {
	return ws.inserted[ws.index(entity)]
}

func (ws *workspace) hasUpdates() bool {
	return len(ws.updates) > 0
}

func (ws *workspace) hasUpdatesFor(typeName string) bool {
	return len(ws.updates[typeName]) > 0
}

func (ws *workspace) removalsOf(owner any) []removal {
	return ws.deletions[ws.index(owner)]
}

func (ws *workspace) addRemoval(owner any, field string, member any) {
	idx := ws.index(owner)
	for i := range ws.deletions[idx] {
		if ws.deletions[idx][i].field == field {
			ws.deletions[idx][i].members = append(ws.deletions[idx][i].members, member)
			return
		}
	}
	ws.deletions[idx] = append(ws.deletions[idx], removal{field: field, members: []any{member}})
}

// indexSchedules fills the update, insertion and deletion indexes from the
// unit of work.
func (ws *workspace) indexSchedules(uow contracts.UnitOfWork, meta contracts.Metadata) error {
	scheduled := append([]any{}, uow.ScheduledInsertions()...)
	scheduled = append(scheduled, uow.ScheduledUpdates()...)

	for _, entity := range uow.ScheduledInsertions() {
		ws.inserted[ws.index(entity)] = true
	}

	for _, update := range uow.ScheduledCollectionUpdates() {
		for _, member := range update.Inserted {
			scheduled = append(scheduled, member)
			ws.inserted[ws.index(member)] = true
		}
		for _, member := range update.Deleted {
			ws.addRemoval(update.Owner, update.Field, member)
		}
	}

	for _, entity := range scheduled {
		typeName, err := meta.TypeName(entity)
		if err != nil {
			return fmt.Errorf("failed to resolve scheduled entity type: %w", err)
		}
		if ws.updates[typeName] == nil {
			ws.updates[typeName] = make(map[int]any)
		}
		ws.updates[typeName][ws.index(entity)] = entity
	}

	return nil
}

// loadedMembers normalizes an association value to the list of entities it
// holds. Values that are not loaded yield no members.
func loadedMembers(value any) []any {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}

	if lazy, ok := value.(contracts.Initializer); ok && !lazy.IsInitialized() {
		return nil
	}
	if collection, ok := value.(contracts.Collection); ok {
		return collection.Members()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		members := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if (elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface) && elem.IsNil() {
				continue
			}
			members = append(members, memberOf(elem))
		}
		return members
	case reflect.Map:
		return nil
	}

	return []any{memberOf(rv)}
}

// memberOf returns an association value as an entity reference. Entities are
// tracked by pointer: struct elements of a slice are addressed in place, other
// struct values are copied behind a new pointer.
func memberOf(elem reflect.Value) any {
	if elem.Kind() != reflect.Struct {
		return elem.Interface()
	}
	if elem.CanAddr() {
		return elem.Addr().Interface()
	}
	ptr := reflect.New(elem.Type())
	ptr.Elem().Set(elem)
	return ptr.Interface()
}
