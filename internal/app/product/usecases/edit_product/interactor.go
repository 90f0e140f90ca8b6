package edit_product

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/visitors"
	"github.com/light-bringer/procat-changeset/internal/app/product/contracts"
	"github.com/light-bringer/procat-changeset/internal/app/product/domain"
	"github.com/light-bringer/procat-changeset/internal/models/m_catalog"
	"github.com/light-bringer/procat-changeset/internal/pkg/clock"
	"github.com/light-bringer/procat-changeset/internal/pkg/committer"
)

// DiscountRequest describes a discount to attach.
type DiscountRequest struct {
	Code     string
	Percent  float64
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Request contains the edits to apply to a product. Nil fields are left
// unchanged.
type Request struct {
	ProductID     string
	Name          *string
	Price         *domain.Money
	Stock         *int64
	Active        *bool
	AddDiscounts  []DiscountRequest
	DropDiscounts []string // Discount codes
	ChangedReason string   // Recorded in the price history
	Commit        bool     // Write the edits back after reporting
}

// Interactor handles the edit product use case: it applies edits to a loaded
// product in memory and reports the resulting changes. The edits are written
// back only when the request asks for it.
type Interactor struct {
	repo      contracts.ProductRepository
	tracker   contracts.ChangeTracker
	reporter  contracts.ChangeReporter
	committer *committer.Committer
	clock     clock.Clock
}

// NewInteractor creates a new edit product interactor.
func NewInteractor(
	repo contracts.ProductRepository,
	tracker contracts.ChangeTracker,
	reporter contracts.ChangeReporter,
	committer *committer.Committer,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		repo:      repo,
		tracker:   tracker,
		reporter:  reporter,
		committer: committer,
		clock:     clock,
	}
}

// Execute applies the edits and returns the changes they produce.
func (i *Interactor) Execute(ctx context.Context, req *Request) ([]visitors.Change, error) {
	// 1. Validate request
	if err := i.validate(req); err != nil {
		return nil, err
	}

	// 2. Load and track the product graph, dropping graphs of earlier calls
	product, err := i.repo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	i.tracker.Clear()
	if err := i.tracker.Track(product); err != nil {
		return nil, fmt.Errorf("failed to track product: %w", err)
	}

	// 3. Apply scalar edits
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	// 4. Record the price change
	if req.Price != nil && !req.Price.Equals(domain.NewMoneyFromFloat(product.Price)) {
		oldPrice := product.Price
		product.Price = req.Price.Float64()
		product.PriceHistory = append(product.PriceHistory, &m_catalog.PriceHistory{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			OldPrice:  &oldPrice,
			NewPrice:  product.Price,
			Reason:    req.ChangedReason,
			ChangedAt: i.clock.Now(),
		})
	}

	// 5. Apply discount edits
	dropped, err := i.editDiscounts(product, req)
	if err != nil {
		return nil, err
	}

	// 6. Report changes
	changes, err := i.reporter.Execute(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to report changes: %w", err)
	}

	// 7. Write back
	if req.Commit {
		plan := committer.NewPlan()
		plan.Add(i.repo.SaveMut(product))
		plan.Add(i.repo.DeleteDiscountsMut(dropped))

		if err := i.committer.Apply(ctx, plan); err != nil {
			return nil, err
		}
	}

	return changes, nil
}

// editDiscounts drops and adds discounts and returns the IDs of the dropped ones.
func (i *Interactor) editDiscounts(product *m_catalog.Product, req *Request) ([]string, error) {
	var dropped []string
	if len(req.DropDiscounts) > 0 {
		product.Discounts = slices.DeleteFunc(slices.Clone(product.Discounts), func(d *m_catalog.Discount) bool {
			if slices.Contains(req.DropDiscounts, d.Code) {
				dropped = append(dropped, d.ID)
				return true
			}
			return false
		})
	}

	for _, add := range req.AddDiscounts {
		exists := slices.ContainsFunc(product.Discounts, func(d *m_catalog.Discount) bool {
			return d.Code == add.Code
		})
		if exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateDiscount, add.Code)
		}

		product.Discounts = append(product.Discounts, &m_catalog.Discount{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Code:      add.Code,
			Percent:   add.Percent,
			StartsAt:  add.StartsAt,
			EndsAt:    add.EndsAt,
		})
	}

	return dropped, nil
}

// validate validates the request.
func (i *Interactor) validate(req *Request) error {
	if req.ProductID == "" {
		return fmt.Errorf("product ID is required")
	}
	if req.Name != nil && *req.Name == "" {
		return domain.ErrEmptyName
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return domain.ErrInvalidPrice
	}
	if req.Stock != nil && *req.Stock < 0 {
		return domain.ErrInvalidStock
	}
	for _, add := range req.AddDiscounts {
		if err := domain.ValidateDiscount(add.Code, add.Percent, add.StartsAt, add.EndsAt); err != nil {
			return err
		}
	}
	return nil
}
