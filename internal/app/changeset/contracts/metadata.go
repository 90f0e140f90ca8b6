package contracts

// Kind is the declared storage kind of an entity field.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindBoolean
	KindFloat
	KindInteger
	KindDate
	KindTime
	KindDateTime
	KindEntity
)

var kindNames = map[Kind]string{
	KindNone:     "none",
	KindString:   "string",
	KindBoolean:  "boolean",
	KindFloat:    "float",
	KindInteger:  "integer",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindEntity:   "entity",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Metadata describes entity types: their fields, identifiers and associations.
type Metadata interface {
	// TypeName returns the entity type name of an entity instance
	TypeName(entity any) (string, error)

	// FieldNames returns the declared fields of a type in declaration order,
	// associations included
	FieldNames(typeName string) ([]string, error)

	// IsIdentifier reports whether a field is part of the type's identifier
	IsIdentifier(typeName, field string) bool

	// DeclaredKind returns the storage kind of a field.
	// To-one associations are KindEntity, to-many associations are KindNone.
	DeclaredKind(typeName, field string) (Kind, error)

	// IsAssociation reports whether a field references other entities
	IsAssociation(typeName, field string) bool

	// AssociationNames returns the association fields of a type in declaration order
	AssociationNames(typeName string) ([]string, error)

	// AssociationTarget returns the type name an association points to
	AssociationTarget(typeName, field string) (string, error)

	// FieldValue reads the current value of a field
	FieldValue(entity any, field string) (any, error)

	// IdentifierValues reads the identifier values of an entity
	IdentifierValues(entity any) (map[string]any, error)

	// IsTransient reports whether the type is not a persistent entity
	IsTransient(typeName string) bool
}

// Initializer is implemented by lazily loaded association values.
type Initializer interface {
	IsInitialized() bool
}

// Collection is implemented by association values that wrap their members.
type Collection interface {
	Members() []any
}
