// Package errors provides the sentinel errors shared by the storefront components.
package errors

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrImageRequired   = errors.New("product image is required")
	ErrUploadFailed    = errors.New("image upload failed")
	ErrEmptyCart       = errors.New("cart is empty")
)
