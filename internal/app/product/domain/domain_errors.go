package domain

import "errors"

// Domain errors as sentinel values
var (
	// Product errors
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyName       = errors.New("product name cannot be empty")
	ErrInvalidPrice    = errors.New("product price must be positive")
	ErrInvalidStock    = errors.New("product stock cannot be negative")

	// Discount errors
	ErrEmptyDiscountCode      = errors.New("discount code cannot be empty")
	ErrInvalidDiscountPercent = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidDiscountPeriod  = errors.New("discount end date must be after start date")
	ErrDuplicateDiscount      = errors.New("product already has a discount with this code")
)
