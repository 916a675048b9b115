package services

import "errors"

// ErrProductNotFound is returned when a lookup by ID or name matches no product.
var ErrProductNotFound = errors.New("product not found")
