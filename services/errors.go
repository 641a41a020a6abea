package services

import (
	"errors"
	"fmt"
)

// Validation errors are raised before any store access.
var (
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrInvalidAction       = errors.New("action must be one of stock_in, stock_out, move")
	ErrInvalidLocationType = errors.New("location type must be main or safety")
	ErrInvalidSKU          = errors.New("SKU must be 9 digits.")
	ErrInvalidProduct      = errors.New("invalid product data")
	ErrInvalidImage        = errors.New("file is not a supported image")
	ErrInvalidStaff        = errors.New("invalid staff data")
)

// Business-rule and authorization errors.
var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrForbidden           = errors.New("Forbidden")
	ErrCrossTenant         = errors.New("Product belongs to another store")
	ErrProductLimitReached = errors.New("Limit reached")
	ErrDuplicateSKU        = errors.New("a product with this SKU already exists")
	ErrStaffExists         = errors.New("Staff member already exists in the system.")
)

// Not-found and structural errors.
var (
	ErrProductNotFound     = errors.New("Product not found")
	ErrCorruptProductState = errors.New("Product locations corrupted")
	ErrStorageDisabled     = errors.New("object storage is not configured")
)

// InsufficientStockError reports a decrement larger than the quantity on hand
type InsufficientStockError struct {
	Location  string
	Current   int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock in %s. Current: %d", e.Location, e.Current)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
