package repo

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// GormMetadata implements contracts.Metadata from gorm model schemas.
// Field and type names are the Go names of the model structs. Foreign key
// columns backing an association are hidden; the association is reported
// instead.
type GormMetadata struct {
	schemas     map[string]*schema.Schema
	types       map[reflect.Type]string
	foreignKeys map[string]map[string]bool
}

// NewGormMetadata parses the models, and every model they reference, with
// the naming strategy of db.
func NewGormMetadata(db *gorm.DB, models ...any) (*GormMetadata, error) {
	m := &GormMetadata{
		schemas:     make(map[string]*schema.Schema),
		types:       make(map[reflect.Type]string),
		foreignKeys: make(map[string]map[string]bool),
	}

	cache := &sync.Map{}
	for _, model := range models {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		m.register(s)
	}

	return m, nil
}

func (m *GormMetadata) register(s *schema.Schema) {
	if _, ok := m.schemas[s.Name]; ok {
		return
	}
	m.schemas[s.Name] = s
	m.types[s.ModelType] = s.Name

	for _, rel := range s.Relationships.Relations {
		for _, ref := range rel.References {
			if ref.ForeignKey == nil || ref.ForeignKey.Schema == nil {
				continue
			}
			owner := ref.ForeignKey.Schema.Name
			if m.foreignKeys[owner] == nil {
				m.foreignKeys[owner] = make(map[string]bool)
			}
			m.foreignKeys[owner][ref.ForeignKey.Name] = true
		}
		if rel.FieldSchema != nil {
			m.register(rel.FieldSchema)
		}
	}
}

func (m *GormMetadata) lookup(typeName string) (*schema.Schema, error) {
	s, ok := m.schemas[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownType, typeName)
	}
	return s, nil
}

func (m *GormMetadata) field(typeName, name string) (*schema.Schema, *schema.Field, error) {
	s, err := m.lookup(typeName)
	if err != nil {
		return nil, nil, err
	}
	f, ok := s.FieldsByName[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, typeName, name)
	}
	return s, f, nil
}

func (m *GormMetadata) TypeName(entity any) (string, error) {
	t := reflect.TypeOf(entity)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name, ok := m.types[t]
	if !ok {
		return "", fmt.Errorf("%w: %T", domain.ErrUnknownType, entity)
	}
	return name, nil
}

func (m *GormMetadata) FieldNames(typeName string) ([]string, error) {
	s, err := m.lookup(typeName)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.TagSettings["-"] == "-" || m.foreignKeys[typeName][f.Name] {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func (m *GormMetadata) IsIdentifier(typeName, field string) bool {
	s, ok := m.schemas[typeName]
	if !ok {
		return false
	}
	for _, f := range s.PrimaryFields {
		if f.Name == field {
			return true
		}
	}
	return false
}

func (m *GormMetadata) DeclaredKind(typeName, field string) (contracts.Kind, error) {
	s, f, err := m.field(typeName, field)
	if err != nil {
		return contracts.KindNone, err
	}

	if rel, ok := s.Relationships.Relations[field]; ok {
		switch rel.Type {
		case schema.BelongsTo, schema.HasOne:
			return contracts.KindEntity, nil
		default:
			return contracts.KindNone, nil
		}
	}

	if kind, ok := kindOfColumnType(f.TagSettings["TYPE"]); ok {
		return kind, nil
	}
	return kindOfDataType(f.GORMDataType), nil
}

func (m *GormMetadata) IsAssociation(typeName, field string) bool {
	s, ok := m.schemas[typeName]
	if !ok {
		return false
	}
	_, ok = s.Relationships.Relations[field]
	return ok
}

func (m *GormMetadata) AssociationNames(typeName string) ([]string, error) {
	s, err := m.lookup(typeName)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, f := range s.Fields {
		if _, ok := s.Relationships.Relations[f.Name]; ok {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func (m *GormMetadata) AssociationTarget(typeName, field string) (string, error) {
	s, err := m.lookup(typeName)
	if err != nil {
		return "", err
	}
	rel, ok := s.Relationships.Relations[field]
	if !ok || rel.FieldSchema == nil {
		return "", fmt.Errorf("%w: %s.%s is not an association", domain.ErrUnknownField, typeName, field)
	}
	return rel.FieldSchema.Name, nil
}

// FieldValue reads a field by its Go name. Struct-valued associations are
// returned as pointers into the entity.
func (m *GormMetadata) FieldValue(entity any, field string) (any, error) {
	rv := reflect.Indirect(reflect.ValueOf(entity))
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownType, entity)
	}

	fv := rv.FieldByName(field)
	if !fv.IsValid() {
		return nil, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, rv.Type().Name(), field)
	}

	if fv.Kind() == reflect.Struct && fv.CanAddr() && m.isModel(fv.Type()) {
		return fv.Addr().Interface(), nil
	}
	return fv.Interface(), nil
}

func (m *GormMetadata) IdentifierValues(entity any) (map[string]any, error) {
	typeName, err := m.TypeName(entity)
	if err != nil {
		return nil, err
	}

	s := m.schemas[typeName]
	values := make(map[string]any, len(s.PrimaryFields))
	for _, f := range s.PrimaryFields {
		v, err := m.FieldValue(entity, f.Name)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return values, nil
}

func (m *GormMetadata) IsTransient(typeName string) bool {
	_, ok := m.schemas[typeName]
	return !ok
}

func (m *GormMetadata) isModel(t reflect.Type) bool {
	_, ok := m.types[t]
	return ok
}

// kindOfColumnType classifies an explicit column type such as decimal(10,2).
func kindOfColumnType(columnType string) (contracts.Kind, bool) {
	columnType = strings.ToLower(strings.TrimSpace(columnType))
	if idx := strings.IndexAny(columnType, "( "); idx >= 0 {
		columnType = columnType[:idx]
	}

	switch columnType {
	case "":
		return contracts.KindNone, false
	case "date":
		return contracts.KindDate, true
	case "time":
		return contracts.KindTime, true
	case "datetime", "timestamp", "timestamptz", "datetimetz":
		return contracts.KindDateTime, true
	case "decimal", "numeric", "real", "float", "double":
		return contracts.KindFloat, true
	case "int", "integer", "smallint", "bigint", "tinyint":
		return contracts.KindInteger, true
	case "bool", "boolean":
		return contracts.KindBoolean, true
	case "char", "varchar", "text", "string", "uuid":
		return contracts.KindString, true
	case "blob", "bytea", "binary", "varbinary", "json", "jsonb":
		return contracts.KindNone, true
	}
	return contracts.KindNone, false
}

func kindOfDataType(dataType schema.DataType) contracts.Kind {
	switch dataType {
	case schema.String:
		return contracts.KindString
	case schema.Bool:
		return contracts.KindBoolean
	case schema.Int, schema.Uint:
		return contracts.KindInteger
	case schema.Float:
		return contracts.KindFloat
	case schema.Time:
		return contracts.KindDateTime
	}
	return contracts.KindNone
}
