package model

import "errors"

var ErrEmptyCart = errors.New("cannot place an order from an empty cart")

// CartLine pairs a catalog snapshot with the requested quantity.
// Quantity never exceeds Product.Stock as of the last validation; a
// violated line is clamped on the next mutation rather than rejected.
type CartLine struct {
	Product  Product
	Quantity int
}

// CartStore persists the full cart snapshot on every mutation.
// There are no partial writes.
type CartStore interface {
	Load() ([]CartLine, error)
	Save(lines []CartLine) error
	Clear() error
}
