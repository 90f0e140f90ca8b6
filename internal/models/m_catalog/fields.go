package m_catalog

// Table name constants.
const (
	CategoryTable     = "categories"
	ProductTable      = "products"
	DiscountTable     = "discounts"
	PriceHistoryTable = "price_history"
)

// Entity type names as reported by the change set metadata.
const (
	CategoryType     = "Category"
	ProductType      = "Product"
	DiscountType     = "Discount"
	PriceHistoryType = "PriceHistory"
)

// Field name constants for change paths.
// These provide type-safe field references and prevent typos.
const (
	ID              = "ID"
	Name            = "Name"
	Description     = "Description"
	CategoryRef     = "Category"
	Price           = "Price"
	Stock           = "Stock"
	Active          = "Active"
	LaunchDate      = "LaunchDate"
	Discounts       = "Discounts"
	PriceHistoryRef = "PriceHistory"

	Code      = "Code"
	Percent   = "Percent"
	StartsAt  = "StartsAt"
	EndsAt    = "EndsAt"
	OldPrice  = "OldPrice"
	NewPrice  = "NewPrice"
	Reason    = "Reason"
	ChangedAt = "ChangedAt"
)
