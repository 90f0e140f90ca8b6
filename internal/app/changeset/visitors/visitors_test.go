package visitors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

func ptr[T any](v T) *T { return &v }

func value(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func visitOne(t *testing.T, v *ProcessorFieldVisitor, namespace string, field domain.Field) Change {
	t.Helper()

	cs := domain.NewChangeSet("Product", nil, namespace)
	cs.AddField(field)
	cs.ApplyVisitor(v, "")

	require.Len(t, v.Changes(), 1)
	return v.Changes()[0]
}

func TestProcessorFieldVisitor_Formatting(t *testing.T) {
	moment := time.Date(2024, 7, 1, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name        string
		field       domain.Field
		expectedOld any
		expectedNew any
	}{
		{"string", domain.NewStringField("name", ptr("a"), nil), "a", nil},
		{"integer", domain.NewIntegerField("stock", ptr(int64(-3)), ptr(int64(12))), "-3", "12"},
		{"float rounded to precision", domain.NewFloatField("price", ptr(9.999), ptr(10.0)), "10.00", "10.00"},
		{"boolean labels", domain.NewBooleanField("active", ptr(false), ptr(true)), "Unchecked", "Checked"},
		{"date", domain.NewTemporalField("launch", domain.TemporalDate, nil, &moment), nil, "2024-07-01"},
		{"time", domain.NewTemporalField("opens", domain.TemporalTime, &moment, nil), "14:05:09", nil},
		{"datetime", domain.NewTemporalField("updated", domain.TemporalDateTime, nil, &moment), nil, "2024-07-01 14:05:09"},
		{
			"entity",
			domain.NewEntityField("category", "Category",
				domain.NewEntityIdentifier(map[string]string{"id": "c1"}),
				domain.NewEntityIdentifier(map[string]string{"region": "eu", "id": "c2"}),
			),
			"Category(id=c1)", "Category(id=c2,region=eu)",
		},
		{"pending entity", domain.NewPendingEntityField("category", "Category", nil), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := visitOne(t, NewProcessorFieldVisitor(DefaultFormatOptions(), nil), "", tt.field)

			assert.Equal(t, tt.field.Name(), change.Name)
			assert.Equal(t, tt.expectedOld, value(change.OldValue))
			assert.Equal(t, tt.expectedNew, value(change.NewValue))
		})
	}
}

func TestProcessorFieldVisitor_CustomFormats(t *testing.T) {
	moment := time.Date(2024, 7, 1, 14, 5, 9, 0, time.UTC)
	options := FormatOptions{
		DateLayouts:    map[domain.TemporalKind]string{domain.TemporalDate: "02.01.2006"},
		BooleanLabels:  BooleanLabels{Checked: "yes"},
		FloatPrecision: 1,
	}
	v := NewProcessorFieldVisitor(options, nil)

	cs := domain.NewChangeSet("Product", nil, "")
	cs.AddField(domain.NewTemporalField("launch", domain.TemporalDate, nil, &moment))
	cs.AddField(domain.NewTemporalField("updated", domain.TemporalDateTime, nil, &moment))
	cs.AddField(domain.NewBooleanField("active", ptr(false), ptr(true)))
	cs.AddField(domain.NewFloatField("price", nil, ptr(2.26)))
	cs.ApplyVisitor(v, "")

	changes := v.Changes()
	require.Len(t, changes, 4)
	assert.Equal(t, "01.07.2024", *changes[0].NewValue)
	assert.Equal(t, "2024-07-01 14:05:09", *changes[1].NewValue)
	assert.Equal(t, "Unchecked", *changes[2].OldValue)
	assert.Equal(t, "yes", *changes[2].NewValue)
	assert.Equal(t, "2.3", *changes[3].NewValue)
}

func TestProcessorFieldVisitor_AcceptedFields(t *testing.T) {
	v := NewProcessorFieldVisitor(DefaultFormatOptions(), []string{"name", "discounts.percent"})

	root := domain.NewChangeSet("Product", nil, "")
	root.AddField(domain.NewStringField("name", nil, ptr("new")))
	root.AddField(domain.NewStringField("description", nil, ptr("ignored")))

	discount := domain.NewChangeSet("Discount", nil, "discounts")
	discount.AddField(domain.NewFloatField("percent", nil, ptr(10.0)))
	discount.AddField(domain.NewStringField("name", nil, ptr("ignored")))
	require.NoError(t, root.AddRelatedChangeSet(discount))

	root.ApplyVisitor(v, "")
	discount.ApplyVisitor(v, "")

	changes := v.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "name", changes[0].Path())
	assert.Equal(t, "discounts.percent", changes[1].Path())
	assert.Equal(t, "discounts", changes[1].Namespace)
	assert.Equal(t, "10.00", *changes[1].NewValue)
}

func TestCommonFieldVisitor_EntityFormatter(t *testing.T) {
	var got []string
	v := NewCommonFieldVisitor(DefaultFormatOptions(), nil, func(name, namespace string, oldValue, newValue *string) {
		got = append(got, *newValue)
	})
	v.SetEntityFormatter(func(targetType string, id *domain.EntityIdentifier) string {
		value, _ := id.SingleValue()
		return targetType + "#" + value
	})
	v.SetEntityFormatter(nil)

	domain.NewEntityField("category", "Category", nil,
		domain.NewEntityIdentifier(map[string]string{"id": "7"}),
	).Accept(v)

	assert.Equal(t, []string{"Category#7"}, got)
}

func TestCommonFieldVisitor_NilHandler(t *testing.T) {
	v := NewCommonFieldVisitor(DefaultFormatOptions(), nil, nil)
	assert.NotPanics(t, func() {
		domain.NewStringField("name", nil, nil).Accept(v)
	})
}

func TestProcessorVisitorFactory(t *testing.T) {
	factory := NewProcessorVisitorFactory(DefaultFormatOptions(), map[string][]string{
		"Product": {"name"},
	})

	product := factory.CreateVisitor("Product")
	assert.True(t, product.IsAccepted("name"))
	assert.False(t, product.IsAccepted("stock"))

	other := factory.CreateVisitor("Discount")
	assert.True(t, other.IsAccepted("anything"))

	assert.NotSame(t, product, factory.CreateVisitor("Product"))
}

func TestChange_Path(t *testing.T) {
	assert.Equal(t, "name", Change{Name: "name"}.Path())
	assert.Equal(t, "discounts.percent", Change{Name: "percent", Namespace: "discounts"}.Path())
}
