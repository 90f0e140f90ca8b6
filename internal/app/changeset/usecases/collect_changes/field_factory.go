package collect_changes

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cast"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// floatEpsilon is the smallest difference reported between two float values.
const floatEpsilon = 1e-5

// TransientReferencePolicy decides how a to-one reference to an entity that
// has not been persisted yet is reported.
type TransientReferencePolicy int

const (
	// TransientReferenceDeferred emits no field for the reference. The new
	// entity only shows up when its association is descended into.
	TransientReferenceDeferred TransientReferencePolicy = iota
	// TransientReferenceReported emits an EntityField with a pending new target.
	TransientReferenceReported
)

// fieldFactory turns raw old/new pairs into typed fields, dropping pairs that
// are equal once normalized to the declared kind.
type fieldFactory struct {
	meta   contracts.Metadata
	uow    contracts.UnitOfWork
	policy TransientReferencePolicy
	logger *slog.Logger
}

// build returns the field for one changed attribute, or nil when nothing
// changed.
func (f *fieldFactory) build(ctx context.Context, typeName, name string, oldValue, newValue any) (domain.Field, error) {
	if f.meta.IsIdentifier(typeName, name) {
		return nil, nil
	}

	oldValue, newValue = indirect(oldValue), indirect(newValue)
	if oldValue == nil && newValue == nil {
		return nil, nil
	}

	kind, err := f.meta.DeclaredKind(typeName, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve kind of %s.%s: %w", typeName, name, err)
	}

	var field domain.Field
	switch kind {
	case contracts.KindString:
		field, err = stringField(name, oldValue, newValue)
	case contracts.KindBoolean:
		field, err = booleanField(name, oldValue, newValue)
	case contracts.KindInteger:
		field, err = integerField(name, oldValue, newValue)
	case contracts.KindFloat:
		field, err = floatField(name, oldValue, newValue)
	case contracts.KindDate:
		field, err = temporalField(name, domain.TemporalDate, oldValue, newValue)
	case contracts.KindTime:
		field, err = temporalField(name, domain.TemporalTime, oldValue, newValue)
	case contracts.KindDateTime:
		field, err = temporalField(name, domain.TemporalDateTime, oldValue, newValue)
	case contracts.KindEntity:
		field, err = f.entityField(ctx, typeName, name, oldValue, newValue)
	case contracts.KindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s.%s has kind %s", domain.ErrUnhandledKind, typeName, name, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", typeName, name, err)
	}

	return field, nil
}

func stringField(name string, oldValue, newValue any) (domain.Field, error) {
	oldStr, err := convert(oldValue, cast.ToStringE)
	if err != nil {
		return nil, err
	}
	newStr, err := convert(newValue, cast.ToStringE)
	if err != nil {
		return nil, err
	}
	if equalPtr(oldStr, newStr) {
		return nil, nil
	}
	return domain.NewStringField(name, oldStr, newStr), nil
}

func booleanField(name string, oldValue, newValue any) (domain.Field, error) {
	oldBool, err := convert(oldValue, toBool)
	if err != nil {
		return nil, err
	}
	newBool, err := convert(newValue, toBool)
	if err != nil {
		return nil, err
	}
	if equalPtr(oldBool, newBool) {
		return nil, nil
	}
	return domain.NewBooleanField(name, oldBool, newBool), nil
}

func integerField(name string, oldValue, newValue any) (domain.Field, error) {
	oldInt, err := convert(oldValue, toInt64)
	if err != nil {
		return nil, err
	}
	newInt, err := convert(newValue, toInt64)
	if err != nil {
		return nil, err
	}
	if equalPtr(oldInt, newInt) {
		return nil, nil
	}
	return domain.NewIntegerField(name, oldInt, newInt), nil
}

func floatField(name string, oldValue, newValue any) (domain.Field, error) {
	oldFloat, err := convert(oldValue, cast.ToFloat64E)
	if err != nil {
		return nil, err
	}
	newFloat, err := convert(newValue, cast.ToFloat64E)
	if err != nil {
		return nil, err
	}
	if oldFloat != nil && newFloat != nil && math.Abs(*oldFloat-*newFloat) < floatEpsilon {
		return nil, nil
	}
	return domain.NewFloatField(name, oldFloat, newFloat), nil
}

func temporalField(name string, kind domain.TemporalKind, oldValue, newValue any) (domain.Field, error) {
	oldTime, err := convert(oldValue, toTime)
	if err != nil {
		return nil, err
	}
	newTime, err := convert(newValue, toTime)
	if err != nil {
		return nil, err
	}
	if oldTime != nil && newTime != nil && sameAtPrecision(kind, *oldTime, *newTime) {
		return nil, nil
	}
	return domain.NewTemporalField(name, kind, oldTime, newTime), nil
}

// sameAtPrecision compares two instants at the precision of the temporal kind.
// Dates and times are read in each value's own location.
func sameAtPrecision(kind domain.TemporalKind, a, b time.Time) bool {
	switch kind {
	case domain.TemporalDate:
		return civil.DateOf(a) == civil.DateOf(b)
	case domain.TemporalTime:
		ta, tb := civil.TimeOf(a), civil.TimeOf(b)
		ta.Nanosecond, tb.Nanosecond = 0, 0
		return ta == tb
	default:
		return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
	}
}

func (f *fieldFactory) entityField(ctx context.Context, typeName, name string, oldValue, newValue any) (domain.Field, error) {
	if sameReference(oldValue, newValue) {
		return nil, nil
	}

	target, err := f.meta.AssociationTarget(typeName, name)
	if err != nil {
		return nil, err
	}

	oldID, err := f.identifierOf(oldValue)
	if err != nil {
		return nil, err
	}

	if newValue != nil && !f.uow.Contains(newValue) {
		if f.policy == TransientReferenceReported {
			return domain.NewPendingEntityField(name, target, oldID), nil
		}
		f.logger.DebugContext(ctx, "transient reference deferred to association descent",
			"type", typeName, "field", name, "target", target)
		return nil, nil
	}

	newID, err := f.identifierOf(newValue)
	if err != nil {
		return nil, err
	}
	if oldID.Equal(newID) {
		return nil, nil
	}

	return domain.NewEntityField(name, target, oldID, newID), nil
}

// identifierOf reads the identifier of a referenced entity. A nil entity has
// no identifier.
func (f *fieldFactory) identifierOf(entity any) (*domain.EntityIdentifier, error) {
	if entity == nil {
		return nil, nil
	}
	values, err := f.meta.IdentifierValues(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to read identifier: %w", err)
	}
	return newIdentifier(values)
}

// newIdentifier normalizes raw identifier values to strings.
func newIdentifier(values map[string]any) (*domain.EntityIdentifier, error) {
	normalized := make(map[string]string, len(values))
	for field, value := range values {
		s, err := convert(indirect(value), cast.ToStringE)
		if err != nil {
			return nil, fmt.Errorf("identifier %s: %w", field, err)
		}
		if s != nil {
			normalized[field] = *s
		} else {
			normalized[field] = ""
		}
	}
	return domain.NewEntityIdentifier(normalized), nil
}

// convert applies a cast conversion to a present value. Absent values stay nil.
func convert[T any](value any, fn func(any) (T, error)) (*T, error) {
	if value == nil {
		return nil, nil
	}
	v, err := fn(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnconvertibleValue, err)
	}
	return &v, nil
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case civil.Date:
		return v.In(time.UTC), nil
	case civil.DateTime:
		return v.In(time.UTC), nil
	case civil.Time:
		return civil.DateTime{Date: civil.Date{Year: 1970, Month: time.January, Day: 1}, Time: v}.In(time.UTC), nil
	}
	return cast.ToTimeE(value)
}

// toInt64 reads strings as base 10, so "010" is ten. Decimal strings are
// truncated toward zero.
func toInt64(value any) (int64, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return cast.ToInt64E(value)
	}

	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("unable to cast %q to int64", s)
	}
	return int64(f), nil
}

// toBool treats any string other than a recognised boolean literal as true,
// except the empty string and "0".
func toBool(value any) (bool, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return cast.ToBoolE(value)
	}

	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return b, nil
	}
	return s != "" && s != "0", nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// indirect dereferences pointers to scalar values and unwraps driver.Valuer
// types such as sql.NullString. Nil pointers and invalid nullables become nil.
// Pointers to structs are entity references and are returned unchanged.
func indirect(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		if elem := rv.Elem(); elem.Kind() == reflect.Struct && !isTemporal(elem) && !isValuer(elem) {
			return rv.Interface()
		}
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Struct && !isTemporal(rv) && isValuer(rv) {
		if v, err := rv.Interface().(driver.Valuer).Value(); err == nil {
			return v
		}
	}
	return rv.Interface()
}

func isValuer(rv reflect.Value) bool {
	return rv.Type().Implements(valuerType)
}

var (
	timeType      = reflect.TypeFor[time.Time]()
	civilDateType = reflect.TypeFor[civil.Date]()
	civilTimeType = reflect.TypeFor[civil.Time]()
	civilDTType   = reflect.TypeFor[civil.DateTime]()
	valuerType    = reflect.TypeFor[driver.Valuer]()
)

func isTemporal(rv reflect.Value) bool {
	switch rv.Type() {
	case timeType, civilDateType, civilTimeType, civilDTType:
		return true
	}
	return false
}

// sameReference reports whether both sides point to the same entity.
func sameReference(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
