package collect_changes

import (
	"fmt"
	"reflect"
	"time"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// Test entity graph:
//
//	EntityA --bCollection--> EntityB --cCollection--> EntityC
//	EntityA --dEntity------> EntityD
//	EntityB --aEntity------> EntityA
//	EntityC --bEntity------> EntityB
type entityA struct {
	ID          int64
	Integer     int64
	String      string
	Boolean     bool
	Date        *time.Time
	Time        *time.Time
	DateTime    *time.Time
	Float       float64
	Payload     []byte
	BCollection []*entityB
	DEntity     *entityD
}

type entityB struct {
	ID          int64
	String      *string
	AEntity     *entityA
	CCollection []*entityC
}

type entityC struct {
	ID      int64
	String  *string
	BEntity *entityB
}

type entityD struct {
	ID     int64
	String string
}

type fieldDef struct {
	name   string
	goName string
	kind   contracts.Kind
	id     bool
	target string
	many   bool
}

type typeDef struct {
	name   string
	fields []fieldDef
}

// fakeMetadata describes the test entities from a static registry.
type fakeMetadata struct {
	types     map[string]typeDef
	byType    map[reflect.Type]string
	transient map[string]bool
}

func newFakeMetadata() *fakeMetadata {
	m := &fakeMetadata{
		types:     make(map[string]typeDef),
		byType:    make(map[reflect.Type]string),
		transient: make(map[string]bool),
	}

	m.register(&entityA{}, typeDef{name: "EntityA", fields: []fieldDef{
		{name: "id", goName: "ID", kind: contracts.KindInteger, id: true},
		{name: "integer", goName: "Integer", kind: contracts.KindInteger},
		{name: "string", goName: "String", kind: contracts.KindString},
		{name: "boolean", goName: "Boolean", kind: contracts.KindBoolean},
		{name: "date", goName: "Date", kind: contracts.KindDate},
		{name: "time", goName: "Time", kind: contracts.KindTime},
		{name: "dateTime", goName: "DateTime", kind: contracts.KindDateTime},
		{name: "float", goName: "Float", kind: contracts.KindFloat},
		{name: "payload", goName: "Payload", kind: contracts.KindNone},
		{name: "bCollection", goName: "BCollection", target: "EntityB", many: true},
		{name: "dEntity", goName: "DEntity", kind: contracts.KindEntity, target: "EntityD"},
	}})
	m.register(&entityB{}, typeDef{name: "EntityB", fields: []fieldDef{
		{name: "id", goName: "ID", kind: contracts.KindInteger, id: true},
		{name: "string", goName: "String", kind: contracts.KindString},
		{name: "aEntity", goName: "AEntity", kind: contracts.KindEntity, target: "EntityA"},
		{name: "cCollection", goName: "CCollection", target: "EntityC", many: true},
	}})
	m.register(&entityC{}, typeDef{name: "EntityC", fields: []fieldDef{
		{name: "id", goName: "ID", kind: contracts.KindInteger, id: true},
		{name: "string", goName: "String", kind: contracts.KindString},
		{name: "bEntity", goName: "BEntity", kind: contracts.KindEntity, target: "EntityB"},
	}})
	m.register(&entityD{}, typeDef{name: "EntityD", fields: []fieldDef{
		{name: "id", goName: "ID", kind: contracts.KindInteger, id: true},
		{name: "string", goName: "String", kind: contracts.KindString},
	}})

	return m
}

func (m *fakeMetadata) register(entity any, def typeDef) {
	m.types[def.name] = def
	m.byType[reflect.TypeOf(entity)] = def.name
}

func (m *fakeMetadata) field(typeName, field string) (fieldDef, bool) {
	for _, f := range m.types[typeName].fields {
		if f.name == field {
			return f, true
		}
	}
	return fieldDef{}, false
}

func (m *fakeMetadata) TypeName(entity any) (string, error) {
	name, ok := m.byType[reflect.TypeOf(entity)]
	if !ok {
		return "", fmt.Errorf("%w: %T", domain.ErrUnknownType, entity)
	}
	return name, nil
}

func (m *fakeMetadata) FieldNames(typeName string) ([]string, error) {
	def, ok := m.types[typeName]
	if !ok {
		return nil, domain.ErrUnknownType
	}
	names := make([]string, 0, len(def.fields))
	for _, f := range def.fields {
		names = append(names, f.name)
	}
	return names, nil
}

func (m *fakeMetadata) IsIdentifier(typeName, field string) bool {
	f, _ := m.field(typeName, field)
	return f.id
}

func (m *fakeMetadata) DeclaredKind(typeName, field string) (contracts.Kind, error) {
	f, ok := m.field(typeName, field)
	if !ok {
		return contracts.KindNone, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, typeName, field)
	}
	return f.kind, nil
}

func (m *fakeMetadata) IsAssociation(typeName, field string) bool {
	f, _ := m.field(typeName, field)
	return f.target != ""
}

func (m *fakeMetadata) AssociationNames(typeName string) ([]string, error) {
	def, ok := m.types[typeName]
	if !ok {
		return nil, domain.ErrUnknownType
	}
	var names []string
	for _, f := range def.fields {
		if f.target != "" {
			names = append(names, f.name)
		}
	}
	return names, nil
}

func (m *fakeMetadata) AssociationTarget(typeName, field string) (string, error) {
	f, ok := m.field(typeName, field)
	if !ok || f.target == "" {
		return "", fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, typeName, field)
	}
	return f.target, nil
}

func (m *fakeMetadata) FieldValue(entity any, field string) (any, error) {
	typeName, err := m.TypeName(entity)
	if err != nil {
		return nil, err
	}
	f, ok := m.field(typeName, field)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, typeName, field)
	}
	return reflect.ValueOf(entity).Elem().FieldByName(f.goName).Interface(), nil
}

func (m *fakeMetadata) IdentifierValues(entity any) (map[string]any, error) {
	typeName, err := m.TypeName(entity)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	for _, f := range m.types[typeName].fields {
		if f.id {
			values[f.name] = reflect.ValueOf(entity).Elem().FieldByName(f.goName).Interface()
		}
	}
	return values, nil
}

func (m *fakeMetadata) IsTransient(typeName string) bool {
	_, ok := m.types[typeName]
	return !ok || m.transient[typeName]
}

// fakeUnitOfWork serves canned deltas and schedules.
type fakeUnitOfWork struct {
	meta *fakeMetadata

	changes     map[any][]contracts.FieldDelta
	insertions  []any
	updates     []any
	collections []contracts.CollectionUpdate
	newEntities map[any]bool
	managed     map[any]bool

	computeErr   error
	computeCalls int
}

func newFakeUnitOfWork(meta *fakeMetadata) *fakeUnitOfWork {
	return &fakeUnitOfWork{
		meta:        meta,
		changes:     make(map[any][]contracts.FieldDelta),
		newEntities: make(map[any]bool),
		managed:     make(map[any]bool),
	}
}

// manage adds entities to the identity map.
func (u *fakeUnitOfWork) manage(entities ...any) {
	for _, e := range entities {
		u.managed[e] = true
	}
}

// insert marks entities as new and schedules them for insertion.
func (u *fakeUnitOfWork) insert(entities ...any) {
	for _, e := range entities {
		u.newEntities[e] = true
		u.insertions = append(u.insertions, e)
	}
}

// change records a delta and schedules the entity for update.
func (u *fakeUnitOfWork) change(entity any, deltas ...contracts.FieldDelta) {
	u.manage(entity)
	u.changes[entity] = append(u.changes[entity], deltas...)
	u.updates = append(u.updates, entity)
}

func (u *fakeUnitOfWork) ComputeChanges() error {
	u.computeCalls++
	return u.computeErr
}

func (u *fakeUnitOfWork) EntityChangeSet(entity any) []contracts.FieldDelta {
	return u.changes[entity]
}

func (u *fakeUnitOfWork) ScheduledInsertions() []any { return u.insertions }
func (u *fakeUnitOfWork) ScheduledUpdates() []any    { return u.updates }

func (u *fakeUnitOfWork) ScheduledCollectionUpdates() []contracts.CollectionUpdate {
	return u.collections
}

func (u *fakeUnitOfWork) EntityState(entity any) contracts.EntityState {
	if u.newEntities[entity] {
		return contracts.StateNew
	}
	return contracts.StateManaged
}

func (u *fakeUnitOfWork) Contains(entity any) bool {
	return u.managed[entity]
}

func (u *fakeUnitOfWork) EntityIdentifier(entity any) (map[string]any, bool) {
	if !u.managed[entity] {
		return nil, false
	}
	values, err := u.meta.IdentifierValues(entity)
	if err != nil {
		return nil, false
	}
	return values, true
}

func delta(name string, oldValue, newValue any) contracts.FieldDelta {
	return contracts.FieldDelta{Name: name, Old: oldValue, New: newValue}
}

func ptr[T any](v T) *T { return &v }

// visitedField is a flattened view of a visited field.
type visitedField struct {
	kind string
	path string
	old  any
	new  any
}

// visitAll flattens the local fields of every change set in the tree.
func visitAll(cs *domain.ChangeSet) []visitedField {
	var out []visitedField
	visitor := domain.FieldVisitorFuncs{
		String: func(f *domain.StringField) {
			out = append(out, visitedField{"string", f.Path(), deref(f.OldValue()), deref(f.NewValue())})
		},
		Integer: func(f *domain.IntegerField) {
			out = append(out, visitedField{"integer", f.Path(), deref(f.OldValue()), deref(f.NewValue())})
		},
		Float: func(f *domain.FloatField) {
			out = append(out, visitedField{"float", f.Path(), deref(f.OldValue()), deref(f.NewValue())})
		},
		Boolean: func(f *domain.BooleanField) {
			out = append(out, visitedField{"boolean", f.Path(), deref(f.OldValue()), deref(f.NewValue())})
		},
		Temporal: func(f *domain.TemporalField) {
			out = append(out, visitedField{string(f.Kind()), f.Path(), deref(f.OldValue()), deref(f.NewValue())})
		},
		Entity: func(f *domain.EntityField) {
			out = append(out, visitedField{"entity", f.Path(), identifierString(f.OldIdentifier()), identifierString(f.NewIdentifier())})
		},
	}

	var walk func(*domain.ChangeSet)
	walk = func(node *domain.ChangeSet) {
		node.ApplyVisitor(visitor, "")
		for _, child := range node.RelatedChangeSets() {
			walk(child)
		}
	}
	walk(cs)

	return out
}

func deref[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func identifierString(id *domain.EntityIdentifier) any {
	if id == nil {
		return nil
	}
	v, _ := id.SingleValue()
	return v
}
