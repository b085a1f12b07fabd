package model

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price cannot be negative")
	ErrInvalidStock    = errors.New("stock cannot be negative")
)

type ProductID string

type Product struct {
	ID          ProductID
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductRepository interface {
	NextID() (ProductID, error)
	Store(product *Product) error
	Find(id ProductID) (*Product, error)
	List() ([]*Product, error)
	Remove(id ProductID) error
	ReplaceAll(products []*Product) error
}
