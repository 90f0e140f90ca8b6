package seed_catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/procat-changeset/internal/app/product/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/product/domain"
	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
	"github.com/light-bringer/procat-changeset/internal/pkg/clock"
)

// Interactor handles the seed catalog use case.
type Interactor struct {
	repo  contracts.ProductRepository
	clock clock.Clock
}

// NewInteractor creates a new seed catalog interactor.
func NewInteractor(repo contracts.ProductRepository, clock clock.Clock) *Interactor {
	return &Interactor{repo: repo, clock: clock}
}

// Execute returns the ID of the first product, creating a demo product when
// the catalog is empty.
func (i *Interactor) Execute(ctx context.Context) (string, error) {
	// 1. Reuse an existing product
	productID, err := i.repo.FirstID(ctx)
	if err == nil {
		return productID, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		return "", err
	}

	// 2. Build the demo product
	now := i.clock.Now().UTC()
	launch := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	price := 49.9

	product := &m_catalog.Product{
		ID:          uuid.New().String(),
		Name:        "Desk lamp",
		Description: "Adjustable LED desk lamp",
		Category:    &m_catalog.Category{ID: uuid.New().String(), Name: "Lighting"},
		Price:       price,
		Stock:       25,
		Active:      true,
		LaunchDate:  &launch,
	}
	product.Discounts = []*m_catalog.Discount{
		{ID: uuid.New().String(), ProductID: product.ID, Code: "WELCOME", Percent: 10, StartsAt: &now},
	}
	product.PriceHistory = []*m_catalog.PriceHistory{
		{ID: uuid.New().String(), ProductID: product.ID, NewPrice: price, Reason: "initial price", ChangedAt: now},
	}

	// 3. Persist
	if err := i.repo.Create(ctx, product); err != nil {
		return "", fmt.Errorf("failed to seed catalog: %w", err)
	}

	return product.ID, nil
}
