package visitors

import (
	"strconv"
	"strings"
	"time"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// ChangeHandler receives each accepted field rendered as strings.
type ChangeHandler func(name, namespace string, oldValue, newValue *string)

// EntityFormatter renders the identifier of a referenced entity.
type EntityFormatter func(targetType string, identifier *domain.EntityIdentifier) string

// CommonFieldVisitor renders every field kind to strings and passes the
// result to a ChangeHandler. Fields whose namespaced path is not in the
// accepted list are ignored; an empty list accepts every field.
type CommonFieldVisitor struct {
	options      FormatOptions
	accepted     map[string]bool
	handle       ChangeHandler
	formatEntity EntityFormatter
}

// NewCommonFieldVisitor creates a CommonFieldVisitor.
func NewCommonFieldVisitor(options FormatOptions, acceptedFields []string, handle ChangeHandler) *CommonFieldVisitor {
	accepted := make(map[string]bool, len(acceptedFields))
	for _, path := range acceptedFields {
		accepted[path] = true
	}

	return &CommonFieldVisitor{
		options:      options.withDefaults(),
		accepted:     accepted,
		handle:       handle,
		formatEntity: FormatEntity,
	}
}

// SetEntityFormatter replaces the renderer of entity references.
func (v *CommonFieldVisitor) SetEntityFormatter(formatter EntityFormatter) {
	if formatter != nil {
		v.formatEntity = formatter
	}
}

// IsAccepted reports whether a namespaced field path passes the filter.
func (v *CommonFieldVisitor) IsAccepted(path string) bool {
	return len(v.accepted) == 0 || v.accepted[path]
}

func (v *CommonFieldVisitor) VisitStringField(field *domain.StringField) {
	v.emit(field, field.OldValue(), field.NewValue())
}

func (v *CommonFieldVisitor) VisitIntegerField(field *domain.IntegerField) {
	v.emit(field, formatPtr(field.OldValue(), formatInteger), formatPtr(field.NewValue(), formatInteger))
}

func (v *CommonFieldVisitor) VisitFloatField(field *domain.FloatField) {
	v.emit(field, formatPtr(field.OldValue(), v.formatFloat), formatPtr(field.NewValue(), v.formatFloat))
}

func (v *CommonFieldVisitor) VisitBooleanField(field *domain.BooleanField) {
	v.emit(field, formatPtr(field.OldValue(), v.formatBoolean), formatPtr(field.NewValue(), v.formatBoolean))
}

func (v *CommonFieldVisitor) VisitTemporalField(field *domain.TemporalField) {
	layout := v.options.DateLayouts[field.Kind()]
	format := func(t time.Time) string { return t.Format(layout) }

	v.emit(field, formatPtr(field.OldValue(), format), formatPtr(field.NewValue(), format))
}

func (v *CommonFieldVisitor) VisitEntityField(field *domain.EntityField) {
	var oldValue, newValue *string
	if id := field.OldIdentifier(); id != nil {
		s := v.formatEntity(field.TargetType(), id)
		oldValue = &s
	}
	if id := field.NewIdentifier(); id != nil {
		s := v.formatEntity(field.TargetType(), id)
		newValue = &s
	}

	v.emit(field, oldValue, newValue)
}

func (v *CommonFieldVisitor) emit(field domain.Field, oldValue, newValue *string) {
	if !v.IsAccepted(field.Path()) || v.handle == nil {
		return
	}
	v.handle(field.Name(), field.Namespace(), oldValue, newValue)
}

func (v *CommonFieldVisitor) formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', v.options.FloatPrecision, 64)
}

func (v *CommonFieldVisitor) formatBoolean(b bool) string {
	if b {
		return v.options.BooleanLabels.Checked
	}
	return v.options.BooleanLabels.Unchecked
}

func formatInteger(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatPtr[T any](value *T, format func(T) string) *string {
	if value == nil {
		return nil
	}
	s := format(*value)
	return &s
}

// FormatEntity renders an entity reference as Type(field=value,...) with the
// identifier fields in sorted order.
func FormatEntity(targetType string, identifier *domain.EntityIdentifier) string {
	var sb strings.Builder
	sb.WriteString(targetType)
	sb.WriteByte('(')
	for i, field := range identifier.Fields() {
		if i > 0 {
			sb.WriteByte(',')
		}
		value, _ := identifier.Value(field)
		sb.WriteString(field)
		sb.WriteByte('=')
		sb.WriteString(value)
	}
	sb.WriteByte(')')
	return sb.String()
}
