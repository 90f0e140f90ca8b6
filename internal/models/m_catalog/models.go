package m_catalog

import "time"

// Category represents the database model for the categories table.
type Category struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"size:120;not null"`
}

// Product represents the database model for the products table.
type Product struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Name         string  `gorm:"size:255;not null"`
	Description  string  `gorm:"type:text"`
	CategoryID   *string `gorm:"size:36;index"`
	Category     *Category
	Price        float64 `gorm:"type:decimal(12,2)"`
	Stock        int64
	Active       bool
	LaunchDate   *time.Time `gorm:"type:date"`
	Discounts    []*Discount
	PriceHistory []*PriceHistory
}

// Discount represents a percentage discount attached to a product.
type Discount struct {
	ID        string  `gorm:"primaryKey;size:36"`
	ProductID string  `gorm:"size:36;index;not null"`
	Code      string  `gorm:"size:64"`
	Percent   float64 `gorm:"type:decimal(5,2)"`
	StartsAt  *time.Time
	EndsAt    *time.Time
}

// PriceHistory represents a price change record of a product.
type PriceHistory struct {
	ID        string   `gorm:"primaryKey;size:36"`
	ProductID string   `gorm:"size:36;index;not null"`
	OldPrice  *float64 `gorm:"type:decimal(12,2)"`
	NewPrice  float64  `gorm:"type:decimal(12,2)"`
	Reason    string   `gorm:"size:255"`
	ChangedAt time.Time
}

// TableName overrides the pluralized default.
func (PriceHistory) TableName() string {
	return PriceHistoryTable
}

// All returns every catalog model, in migration order.
func All() []any {
	return []any{&Category{}, &Product{}, &Discount{}, &PriceHistory{}}
}
