package domain

import "errors"

// Domain errors as sentinel values
var (
	// Collection errors
	ErrInvalidEntity      = errors.New("all entities must be non-nil pointers of the same type")
	ErrInvalidChangeSet   = errors.New("related change set must be created with a non empty namespace")
	ErrUnconvertibleValue = errors.New("value cannot be converted to the declared field kind")
	ErrUnhandledKind      = errors.New("unhandled field kind")

	// Metadata errors
	ErrUnknownType  = errors.New("unknown entity type")
	ErrUnknownField = errors.New("unknown entity field")
)
