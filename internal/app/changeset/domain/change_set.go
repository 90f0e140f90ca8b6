package domain

import (
	"fmt"
	"strings"
)

// PathSeparator separates the segments of a namespace or field path.
const PathSeparator = "."

// JoinPath appends name to namespace, omitting the separator at the root.
func JoinPath(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + PathSeparator + name
}

// ChangeSet holds the changes detected for one entity instance together with
// the change sets of related entities that were inserted, updated or removed.
//
// Related change sets are addressed by their relative name: a child stored
// under "discounts" of a change set at namespace "product" has the namespace
// "product.discounts".
type ChangeSet struct {
	entityType string
	identifier *EntityIdentifier
	namespace  string

	fields     []Field
	fieldIndex []string

	related      []*ChangeSet
	relatedIndex []string
}

// NewChangeSet creates an empty ChangeSet. The identifier is nil for entities
// that have not been persisted yet; namespace is empty for root change sets.
func NewChangeSet(entityType string, identifier *EntityIdentifier, namespace string) *ChangeSet {
	return &ChangeSet{
		entityType: entityType,
		identifier: identifier,
		namespace:  namespace,
	}
}

// Getters
func (cs *ChangeSet) EntityType() string              { return cs.entityType }
func (cs *ChangeSet) Identifier() *EntityIdentifier   { return cs.identifier }
func (cs *ChangeSet) Namespace() string               { return cs.namespace }
func (cs *ChangeSet) Fields() []Field                 { return cs.fields }
func (cs *ChangeSet) RelatedChangeSets() []*ChangeSet { return cs.related }

// IsInstanceOf reports whether the change set belongs to an entity of the given type.
func (cs *ChangeSet) IsInstanceOf(entityType string) bool {
	return cs.entityType == entityType
}

// IdentifierValue returns one identifier value of the entity.
func (cs *ChangeSet) IdentifierValue(field string) (string, bool) {
	if cs.identifier == nil {
		return "", false
	}
	return cs.identifier.Value(field)
}

// IsEmpty returns true if the change set has neither fields nor related change sets.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.fieldIndex) == 0 && len(cs.relatedIndex) == 0
}

// AddField attaches a field and stamps it with the change set namespace.
func (cs *ChangeSet) AddField(field Field) {
	field.stamp(cs.namespace)

	cs.fields = append(cs.fields, field)
	cs.fieldIndex = append(cs.fieldIndex, field.Name())
}

// AddRelatedChangeSet attaches the change set of a related entity.
// Returns ErrInvalidChangeSet if the related change set has no namespace.
func (cs *ChangeSet) AddRelatedChangeSet(related *ChangeSet) error {
	key := related.Namespace()
	if key == "" {
		return fmt.Errorf("%w: %s", ErrInvalidChangeSet, related.EntityType())
	}

	cs.related = append(cs.related, related)
	cs.relatedIndex = append(cs.relatedIndex, key)

	return nil
}

// HasField reports whether a field exists at the given dotted path, relative
// to this change set. "discounts.percent" looks for a "percent" field in every
// related change set stored under "discounts".
func (cs *ChangeSet) HasField(fieldPath string) bool {
	head, rest, nested := strings.Cut(fieldPath, PathSeparator)
	if nested {
		for _, related := range cs.relatedByName(head) {
			if related.HasField(rest) {
				return true
			}
		}
		return false
	}

	if head == "" {
		return false
	}

	for _, name := range cs.fieldIndex {
		if name == head {
			return true
		}
	}
	return false
}

// ApplyVisitor applies the visitor to the fields of this change set.
//
// With an empty fieldPath only the local fields are visited; related change
// sets are not descended into. A fieldPath narrows the visit to a concrete
// field or related change set, and may traverse related change sets
// ("discounts.percent"). The path may be relative to this change set or
// absolute from the root, in which case this change set's namespace prefix is
// consumed first.
func (cs *ChangeSet) ApplyVisitor(visitor FieldVisitor, fieldPath string) {
	fieldPath = cs.relativePath(fieldPath)

	if head, rest, nested := strings.Cut(fieldPath, PathSeparator); nested {
		for _, related := range cs.relatedByName(head) {
			related.ApplyVisitor(visitor, rest)
		}
		return
	}

	if fieldPath != "" {
		// A name may refer to a local field and to related change sets at once.
		for i, name := range cs.fieldIndex {
			if name == fieldPath {
				cs.fields[i].Accept(visitor)
			}
		}
		for _, related := range cs.relatedByName(fieldPath) {
			related.ApplyVisitor(visitor, "")
		}
		return
	}

	for _, field := range cs.fields {
		field.Accept(visitor)
	}
}

// relativePath strips this change set's namespace from an absolute path.
// Only whole segments are stripped.
func (cs *ChangeSet) relativePath(fieldPath string) string {
	if fieldPath == "" || cs.namespace == "" {
		return fieldPath
	}
	if fieldPath == cs.namespace {
		return ""
	}
	if rest, ok := strings.CutPrefix(fieldPath, cs.namespace+PathSeparator); ok {
		return rest
	}
	return fieldPath
}

func (cs *ChangeSet) relatedByName(name string) []*ChangeSet {
	key := JoinPath(cs.namespace, name)

	var matches []*ChangeSet
	for i, ns := range cs.relatedIndex {
		if ns == key {
			matches = append(matches, cs.related[i])
		}
	}
	return matches
}
