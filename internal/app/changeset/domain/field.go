package domain

import "time"

// Field is one typed, named change of an entity attribute.
// The set of implementations is closed: StringField, IntegerField, FloatField,
// BooleanField, TemporalField and EntityField.
type Field interface {
	// Name returns the bare field name.
	Name() string
	// Namespace returns the dotted path of the owning change set.
	Namespace() string
	// Path returns the namespaced name, or the bare name at the root.
	Path() string
	// Accept dispatches to the visitor method matching the field kind.
	Accept(visitor FieldVisitor)

	stamp(namespace string)
}

// fieldName holds the naming state shared by all field kinds.
type fieldName struct {
	name      string
	namespace string
	stamped   bool
}

func (f *fieldName) Name() string      { return f.name }
func (f *fieldName) Namespace() string { return f.namespace }

func (f *fieldName) Path() string {
	return JoinPath(f.namespace, f.name)
}

// stamp sets the namespace the first time the field is attached to a change set.
func (f *fieldName) stamp(namespace string) {
	if f.stamped {
		return
	}
	f.namespace = namespace
	f.stamped = true
}

// StringField is a change of a string attribute.
type StringField struct {
	fieldName
	oldValue *string
	newValue *string
}

// NewStringField creates a StringField. Nil values mean "no value".
func NewStringField(name string, oldValue, newValue *string) *StringField {
	return &StringField{fieldName: fieldName{name: name}, oldValue: oldValue, newValue: newValue}
}

func (f *StringField) OldValue() *string { return f.oldValue }
func (f *StringField) NewValue() *string { return f.newValue }

// Accept calls visitor.VisitStringField.
func (f *StringField) Accept(visitor FieldVisitor) { visitor.VisitStringField(f) }

// IntegerField is a change of an integer attribute.
type IntegerField struct {
	fieldName
	oldValue *int64
	newValue *int64
}

// NewIntegerField creates an IntegerField. Nil values mean "no value".
func NewIntegerField(name string, oldValue, newValue *int64) *IntegerField {
	return &IntegerField{fieldName: fieldName{name: name}, oldValue: oldValue, newValue: newValue}
}

func (f *IntegerField) OldValue() *int64 { return f.oldValue }
func (f *IntegerField) NewValue() *int64 { return f.newValue }

// Accept calls visitor.VisitIntegerField.
func (f *IntegerField) Accept(visitor FieldVisitor) { visitor.VisitIntegerField(f) }

// FloatField is a change of a float or decimal attribute.
type FloatField struct {
	fieldName
	oldValue *float64
	newValue *float64
}

// NewFloatField creates a FloatField. Nil values mean "no value".
func NewFloatField(name string, oldValue, newValue *float64) *FloatField {
	return &FloatField{fieldName: fieldName{name: name}, oldValue: oldValue, newValue: newValue}
}

func (f *FloatField) OldValue() *float64 { return f.oldValue }
func (f *FloatField) NewValue() *float64 { return f.newValue }

// Accept calls visitor.VisitFloatField.
func (f *FloatField) Accept(visitor FieldVisitor) { visitor.VisitFloatField(f) }

// BooleanField is a change of a boolean attribute.
type BooleanField struct {
	fieldName
	oldValue *bool
	newValue *bool
}

// NewBooleanField creates a BooleanField. Nil values mean "no value".
func NewBooleanField(name string, oldValue, newValue *bool) *BooleanField {
	return &BooleanField{fieldName: fieldName{name: name}, oldValue: oldValue, newValue: newValue}
}

func (f *BooleanField) OldValue() *bool { return f.oldValue }
func (f *BooleanField) NewValue() *bool { return f.newValue }

// Accept calls visitor.VisitBooleanField.
func (f *BooleanField) Accept(visitor FieldVisitor) { visitor.VisitBooleanField(f) }

// TemporalKind is the declared precision of a temporal attribute.
type TemporalKind string

const (
	TemporalDate     TemporalKind = "date"
	TemporalTime     TemporalKind = "time"
	TemporalDateTime TemporalKind = "datetime"
)

// TemporalField is a change of a date, time or datetime attribute.
// Values are kept as reported, without truncation.
type TemporalField struct {
	fieldName
	kind     TemporalKind
	oldValue *time.Time
	newValue *time.Time
}

// NewTemporalField creates a TemporalField of the given kind.
func NewTemporalField(name string, kind TemporalKind, oldValue, newValue *time.Time) *TemporalField {
	return &TemporalField{fieldName: fieldName{name: name}, kind: kind, oldValue: oldValue, newValue: newValue}
}

func (f *TemporalField) Kind() TemporalKind   { return f.kind }
func (f *TemporalField) IsDate() bool         { return f.kind == TemporalDate }
func (f *TemporalField) IsTime() bool         { return f.kind == TemporalTime }
func (f *TemporalField) IsDateTime() bool     { return f.kind == TemporalDateTime }
func (f *TemporalField) OldValue() *time.Time { return f.oldValue }
func (f *TemporalField) NewValue() *time.Time { return f.newValue }

// Accept calls visitor.VisitTemporalField.
func (f *TemporalField) Accept(visitor FieldVisitor) { visitor.VisitTemporalField(f) }

// EntityField is a change of a to-one association, expressed through the
// identifiers of the referenced entities.
type EntityField struct {
	fieldName
	targetType    string
	oldIdentifier *EntityIdentifier
	newIdentifier *EntityIdentifier
	newPending    bool
}

// NewEntityField creates an EntityField. A nil identifier means "no reference".
func NewEntityField(name, targetType string, oldIdentifier, newIdentifier *EntityIdentifier) *EntityField {
	return &EntityField{
		fieldName:     fieldName{name: name},
		targetType:    targetType,
		oldIdentifier: oldIdentifier,
		newIdentifier: newIdentifier,
	}
}

// NewPendingEntityField creates an EntityField whose new target has not been
// persisted yet and therefore has no identifier.
func NewPendingEntityField(name, targetType string, oldIdentifier *EntityIdentifier) *EntityField {
	f := NewEntityField(name, targetType, oldIdentifier, nil)
	f.newPending = true
	return f
}

func (f *EntityField) TargetType() string               { return f.targetType }
func (f *EntityField) OldIdentifier() *EntityIdentifier { return f.oldIdentifier }
func (f *EntityField) NewIdentifier() *EntityIdentifier { return f.newIdentifier }

// NewPending reports whether the new target exists but is not identified yet.
func (f *EntityField) NewPending() bool { return f.newPending }

// Accept calls visitor.VisitEntityField.
func (f *EntityField) Accept(visitor FieldVisitor) { visitor.VisitEntityField(f) }
