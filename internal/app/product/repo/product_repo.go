package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/light-bringer/procat-changeset/internal/app/product/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/product/domain"
	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
	"github.com/light-bringer/procat-changeset/internal/pkg/committer"
)

// ProductRepo implements ProductRepository with gorm.
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *gorm.DB) contracts.ProductRepository {
	return &ProductRepo{db: db}
}

// GetByID retrieves a product with its category, discounts ordered by code
// and price history ordered by time.
func (r *ProductRepo) GetByID(ctx context.Context, productID string) (*m_catalog.Product, error) {
	var product m_catalog.Product
	err := r.db.WithContext(ctx).
		Preload(m_catalog.CategoryRef).
		Preload(m_catalog.Discounts, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("code")
		}).
		Preload(m_catalog.PriceHistoryRef, func(tx *gorm.DB) *gorm.DB {
			return tx.Order("changed_at")
		}).
		First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	return &product, nil
}

// FirstID returns the ID of the first product ordered by name.
func (r *ProductRepo) FirstID(ctx context.Context) (string, error) {
	var product m_catalog.Product
	err := r.db.WithContext(ctx).Select("id").Order("name").First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrProductNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read products: %w", err)
	}

	return product.ID, nil
}

// Create inserts a product. Its category, discounts and price history are
// inserted with it.
func (r *ProductRepo) Create(ctx context.Context, product *m_catalog.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// SaveMut returns a mutation that updates the product row and upserts its
// discounts and price history. The category row is not written.
func (r *ProductRepo) SaveMut(product *m_catalog.Product) committer.Mutation {
	return func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{FullSaveAssociations: true}).
			Omit(m_catalog.CategoryRef).
			Save(product).Error
		if err != nil {
			return fmt.Errorf("failed to save product %s: %w", product.ID, err)
		}
		return nil
	}
}

// DeleteDiscountsMut returns a mutation that deletes the given discounts, or
// nil when there is nothing to delete.
func (r *ProductRepo) DeleteDiscountsMut(discountIDs []string) committer.Mutation {
	if len(discountIDs) == 0 {
		return nil
	}
	return func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", discountIDs).Delete(&m_catalog.Discount{}).Error; err != nil {
			return fmt.Errorf("failed to delete discounts: %w", err)
		}
		return nil
	}
}
