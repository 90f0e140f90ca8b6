package domain

import (
	"maps"
	"slices"
)

// EntityIdentifier maps identifier field names to their string values.
// Callers needing numeric identifiers must convert the values themselves.
type EntityIdentifier struct {
	values map[string]string
}

// NewEntityIdentifier creates an EntityIdentifier from already normalized values.
func NewEntityIdentifier(values map[string]string) *EntityIdentifier {
	return &EntityIdentifier{values: maps.Clone(values)}
}

// Fields returns the identifier field names in sorted order.
func (id *EntityIdentifier) Fields() []string {
	return slices.Sorted(maps.Keys(id.values))
}

// Value returns the value of a single identifier field.
func (id *EntityIdentifier) Value(field string) (string, bool) {
	v, ok := id.values[field]
	return v, ok
}

// Values returns a copy of all identifier values.
func (id *EntityIdentifier) Values() map[string]string {
	return maps.Clone(id.values)
}

// IsSingleField reports whether the identifier consists of exactly one field.
func (id *EntityIdentifier) IsSingleField() bool {
	return len(id.values) == 1
}

// SingleValue returns the value of a single-field identifier.
// It reports false for composite identifiers.
func (id *EntityIdentifier) SingleValue() (string, bool) {
	if !id.IsSingleField() {
		return "", false
	}
	for _, v := range id.values {
		return v, true
	}
	return "", false
}

// Equal reports whether both identifiers hold the same fields and values.
// Two nil identifiers are equal.
func (id *EntityIdentifier) Equal(other *EntityIdentifier) bool {
	if id == nil || other == nil {
		return id == nil && other == nil
	}
	return maps.Equal(id.values, other.values)
}
