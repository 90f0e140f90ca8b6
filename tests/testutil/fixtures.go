package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
)

// CreateTestCategory creates a category directly in the database.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *m_catalog.Category {
	t.Helper()

	category := &m_catalog.Category{ID: uuid.New().String(), Name: name}
	require.NoError(t, db.Create(category).Error, "failed to create test category")

	return category
}

// CreateTestProduct creates an active product in the given category.
func CreateTestProduct(t *testing.T, db *gorm.DB, name string, category *m_catalog.Category) *m_catalog.Product {
	t.Helper()

	launch := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	product := &m_catalog.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: "Test product description",
		Price:       100,
		Stock:       10,
		Active:      true,
		LaunchDate:  &launch,
	}
	if category != nil {
		product.CategoryID = &category.ID
	}

	require.NoError(t, db.Omit("Category").Create(product).Error, "failed to create test product")

	return product
}

// CreateTestDiscount attaches a discount to a product.
func CreateTestDiscount(t *testing.T, db *gorm.DB, productID, code string, percent float64) *m_catalog.Discount {
	t.Helper()

	discount := &m_catalog.Discount{
		ID:        uuid.New().String(),
		ProductID: productID,
		Code:      code,
		Percent:   percent,
	}
	require.NoError(t, db.Create(discount).Error, "failed to create test discount")

	return discount
}

// LoadProduct reads a product with its category, discounts and price history.
func LoadProduct(t *testing.T, db *gorm.DB, productID string) *m_catalog.Product {
	t.Helper()

	var product m_catalog.Product
	err := db.
		Preload(m_catalog.CategoryRef).
		Preload(m_catalog.Discounts, func(tx *gorm.DB) *gorm.DB { return tx.Order("code") }).
		Preload(m_catalog.PriceHistoryRef).
		First(&product, "id = ?", productID).Error
	require.NoError(t, err, "failed to load product")

	return &product
}
