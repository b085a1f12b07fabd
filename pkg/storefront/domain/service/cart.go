package service

import (
	"storefront/pkg/storefront/domain/model"
)

type CartItemRequest struct {
	Product  *model.Product
	Quantity int
}

type CartService interface {
	Restore() error
	Add(product *model.Product) error
	BulkReplace(items []CartItemRequest) error
	UpdateQuantity(productID model.ProductID, delta int) error
	Remove(productID model.ProductID) error
	Clear() error
	Lines() []model.CartLine
	Total() int64
}

func NewCartService(store model.CartStore) CartService {
	return &cartService{store: store}
}

type cartService struct {
	store model.CartStore
	lines []model.CartLine
}

// Restore loads the persisted snapshot. Lines that no longer satisfy
// the stock ceiling are clamped rather than dropped; lines whose
// product went out of stock are removed.
func (s *cartService) Restore() error {
	saved, err := s.store.Load()
	if err != nil {
		return err
	}
	lines := make([]model.CartLine, 0, len(saved))
	for _, line := range saved {
		if line.Product.Stock < 1 {
			continue
		}
		if line.Quantity > line.Product.Stock {
			line.Quantity = line.Product.Stock
		}
		if line.Quantity > 0 {
			lines = append(lines, line)
		}
	}
	s.lines = lines
	return nil
}

func (s *cartService) Add(product *model.Product) error {
	if product == nil {
		return nil
	}
	for i, line := range s.lines {
		if line.Product.ID != product.ID {
			continue
		}
		if line.Quantity >= product.Stock {
			// Already at the stock ceiling.
			return nil
		}
		lines := s.copyLines()
		lines[i].Product = *product
		lines[i].Quantity++
		return s.commit(lines)
	}
	if product.Stock < 1 {
		return nil
	}
	lines := append(s.copyLines(), model.CartLine{Product: *product, Quantity: 1})
	return s.commit(lines)
}

func (s *cartService) BulkReplace(items []CartItemRequest) error {
	lines := make([]model.CartLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil || item.Product.Stock < 1 {
			continue
		}
		quantity := item.Quantity
		if quantity > item.Product.Stock {
			quantity = item.Product.Stock
		}
		if quantity < 1 {
			continue
		}
		lines = append(lines, model.CartLine{Product: *item.Product, Quantity: quantity})
	}
	return s.commit(lines)
}

// UpdateQuantity adjusts a line by delta, clamped to [0, stock]. A
// result of zero drops the line after the update, so decrementing to
// zero and incrementing from zero share one code path.
func (s *cartService) UpdateQuantity(productID model.ProductID, delta int) error {
	found := false
	updated := make([]model.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		if line.Product.ID == productID {
			found = true
			quantity := line.Quantity + delta
			if quantity < 0 {
				quantity = 0
			}
			if quantity > line.Product.Stock {
				quantity = line.Product.Stock
			}
			line.Quantity = quantity
		}
		if line.Quantity > 0 {
			updated = append(updated, line)
		}
	}
	if !found {
		return nil
	}
	return s.commit(updated)
}

func (s *cartService) Remove(productID model.ProductID) error {
	lines := make([]model.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		if line.Product.ID != productID {
			lines = append(lines, line)
		}
	}
	return s.commit(lines)
}

func (s *cartService) Clear() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.lines = nil
	return nil
}

func (s *cartService) Lines() []model.CartLine {
	return s.copyLines()
}

// Total is derived on every read, never cached.
func (s *cartService) Total() int64 {
	var total int64
	for _, line := range s.lines {
		total += int64(line.Quantity) * line.Product.PriceCents
	}
	return total
}

func (s *cartService) copyLines() []model.CartLine {
	lines := make([]model.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// commit persists the full snapshot first and only then makes it the
// working set, so a failed write leaves the cart as it was.
func (s *cartService) commit(lines []model.CartLine) error {
	if err := s.store.Save(lines); err != nil {
		return err
	}
	s.lines = lines
	return nil
}
