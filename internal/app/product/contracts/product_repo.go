package contracts

import (
	"context"

	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
	"github.com/light-bringer/procat-changeset/internal/pkg/committer"
)

// ProductRepository defines the interface for product persistence.
// Loaded products carry their category, discounts and price history.
type ProductRepository interface {
	// GetByID retrieves a product with its associations loaded
	GetByID(ctx context.Context, productID string) (*m_catalog.Product, error)

	// FirstID returns the ID of the first product by name
	FirstID(ctx context.Context) (string, error)

	// Create inserts a product together with its new associations
	Create(ctx context.Context, product *m_catalog.Product) error

	// SaveMut returns a mutation that writes the product and its loaded discounts and price history
	SaveMut(product *m_catalog.Product) committer.Mutation

	// DeleteDiscountsMut returns a mutation that removes discounts by ID
	DeleteDiscountsMut(discountIDs []string) committer.Mutation
}
