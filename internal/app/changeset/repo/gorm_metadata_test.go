package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
	"github.com/light-bringer/procat-changeset/tests/testutil"
)

func setupMetadata(t *testing.T) *GormMetadata {
	t.Helper()

	db, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	meta, err := NewGormMetadata(db, &m_catalog.Product{})
	require.NoError(t, err)
	return meta
}

func TestGormMetadata_TypeName(t *testing.T) {
	meta := setupMetadata(t)

	name, err := meta.TypeName(&m_catalog.Product{})
	require.NoError(t, err)
	assert.Equal(t, m_catalog.ProductType, name)

	name, err = meta.TypeName(m_catalog.Discount{})
	require.NoError(t, err)
	assert.Equal(t, m_catalog.DiscountType, name, "related models are registered")

	_, err = meta.TypeName(&struct{}{})
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestGormMetadata_FieldNames(t *testing.T) {
	meta := setupMetadata(t)

	names, err := meta.FieldNames(m_catalog.ProductType)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ID", "Name", "Description", "Category", "Price", "Stock",
		"Active", "LaunchDate", "Discounts", "PriceHistory",
	}, names)

	names, err = meta.FieldNames(m_catalog.DiscountType)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Code", "Percent", "StartsAt", "EndsAt"}, names)

	_, err = meta.FieldNames("Missing")
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestGormMetadata_DeclaredKind(t *testing.T) {
	meta := setupMetadata(t)

	tests := []struct {
		typeName string
		field    string
		expected contracts.Kind
	}{
		{m_catalog.ProductType, m_catalog.Name, contracts.KindString},
		{m_catalog.ProductType, m_catalog.Description, contracts.KindString},
		{m_catalog.ProductType, m_catalog.Price, contracts.KindFloat},
		{m_catalog.ProductType, m_catalog.Stock, contracts.KindInteger},
		{m_catalog.ProductType, m_catalog.Active, contracts.KindBoolean},
		{m_catalog.ProductType, m_catalog.LaunchDate, contracts.KindDate},
		{m_catalog.ProductType, m_catalog.CategoryRef, contracts.KindEntity},
		{m_catalog.ProductType, m_catalog.Discounts, contracts.KindNone},
		{m_catalog.DiscountType, m_catalog.StartsAt, contracts.KindDateTime},
		{m_catalog.PriceHistoryType, m_catalog.OldPrice, contracts.KindFloat},
	}

	for _, tt := range tests {
		t.Run(tt.typeName+"."+tt.field, func(t *testing.T) {
			kind, err := meta.DeclaredKind(tt.typeName, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}

	_, err := meta.DeclaredKind(m_catalog.ProductType, "Missing")
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestGormMetadata_Associations(t *testing.T) {
	meta := setupMetadata(t)

	names, err := meta.AssociationNames(m_catalog.ProductType)
	require.NoError(t, err)
	assert.Equal(t, []string{"Category", "Discounts", "PriceHistory"}, names)

	assert.True(t, meta.IsAssociation(m_catalog.ProductType, m_catalog.Discounts))
	assert.False(t, meta.IsAssociation(m_catalog.ProductType, m_catalog.Name))

	target, err := meta.AssociationTarget(m_catalog.ProductType, m_catalog.CategoryRef)
	require.NoError(t, err)
	assert.Equal(t, m_catalog.CategoryType, target)

	_, err = meta.AssociationTarget(m_catalog.ProductType, m_catalog.Name)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestGormMetadata_Values(t *testing.T) {
	meta := setupMetadata(t)
	product := &m_catalog.Product{ID: "p1", Name: "Lamp", Stock: 4}

	assert.True(t, meta.IsIdentifier(m_catalog.ProductType, m_catalog.ID))
	assert.False(t, meta.IsIdentifier(m_catalog.ProductType, m_catalog.Name))

	value, err := meta.FieldValue(product, m_catalog.Stock)
	require.NoError(t, err)
	assert.Equal(t, int64(4), value)

	_, err = meta.FieldValue(product, "Missing")
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	ids, err := meta.IdentifierValues(product)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ID": "p1"}, ids)

	assert.False(t, meta.IsTransient(m_catalog.CategoryType))
	assert.True(t, meta.IsTransient("Missing"))
}

func TestKindOfColumnType(t *testing.T) {
	tests := []struct {
		columnType string
		expected   contracts.Kind
		ok         bool
	}{
		{"", contracts.KindNone, false},
		{"DECIMAL(10,2)", contracts.KindFloat, true},
		{"timestamp with time zone", contracts.KindDateTime, true},
		{"varchar(36)", contracts.KindString, true},
		{"jsonb", contracts.KindNone, true},
		{"geometry", contracts.KindNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.columnType, func(t *testing.T) {
			kind, ok := kindOfColumnType(tt.columnType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, kind)
		})
	}
}
