package domain

import (
	"strings"
	"time"
)

// ValidateDiscount checks a discount before it is attached to a product.
// Open-ended periods are allowed; a closed period must end after it starts.
func ValidateDiscount(code string, percent float64, startsAt, endsAt *time.Time) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyDiscountCode
	}
	if percent <= 0 || percent > 100 {
		return ErrInvalidDiscountPercent
	}
	if startsAt != nil && endsAt != nil && !endsAt.After(*startsAt) {
		return ErrInvalidDiscountPeriod
	}
	return nil
}
