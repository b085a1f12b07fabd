package service

import (
	"time"

	"storefront/pkg/storefront/domain/model"
)

type CheckoutService interface {
	// PlaceOrder snapshots the active cart into a new pending order,
	// reserves stock and clears the cart. The user may be nil; the
	// order is then anonymous.
	PlaceOrder(user *model.User) (*model.Order, error)

	// PlaceOrderFor builds an order directly from the requested items,
	// bypassing the session cart. Quantities are validated against the
	// live catalog and prices are always taken from it, never from the
	// caller. This is the path remote callers go through.
	PlaceOrderFor(user *model.User, items []CartItemRequest) (*model.Order, error)
}

func NewCheckoutService(
	cart CartService,
	orders model.OrderRepository,
	placer model.OrderPlacer,
	session *SessionCache,
	dispatcher EventDispatcher,
) CheckoutService {
	return &checkoutService{
		cart:       cart,
		orders:     orders,
		placer:     placer,
		session:    session,
		dispatcher: dispatcher,
	}
}

type checkoutService struct {
	cart       CartService
	orders     model.OrderRepository
	placer     model.OrderPlacer
	session    *SessionCache
	dispatcher EventDispatcher
}

func (s *checkoutService) PlaceOrder(user *model.User) (*model.Order, error) {
	order, err := s.place(user, s.cart.Lines())
	if err != nil {
		return nil, err
	}
	// The cart is cleared only after the order and the stock
	// reservation both landed.
	if err := s.cart.Clear(); err != nil {
		return order, err
	}
	return order, nil
}

func (s *checkoutService) PlaceOrderFor(user *model.User, items []CartItemRequest) (*model.Order, error) {
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
	return s.place(user, lines)
}

func (s *checkoutService) place(user *model.User, lines []model.CartLine) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	orderID, err := s.orders.NextID()
	if err != nil {
		return nil, err
	}

	orderLines := make([]model.OrderLine, 0, len(lines))
	reserved := make(map[model.ProductID]int, len(lines))
	var total int64
	for _, line := range lines {
		orderLines = append(orderLines, model.OrderLine{
			ProductID:  line.Product.ID,
			Name:       line.Product.Name,
			Quantity:   line.Quantity,
			PriceCents: line.Product.PriceCents,
		})
		reserved[line.Product.ID] += line.Quantity
		total += int64(line.Quantity) * line.Product.PriceCents
	}

	order := &model.Order{
		ID:         orderID,
		CreatedAt:  time.Now().UTC(),
		Lines:      orderLines,
		TotalCents: total,
		Status:     model.StatusPending,
	}
	if user != nil {
		order.Customer = &model.Customer{Name: user.Name, Email: user.Email}
	}

	if err := s.placer.PlaceOrder(order, reserved); err != nil {
		return nil, err
	}

	if user != nil && s.session != nil && s.session.User() != nil && order.OwnedBy(s.session.User().Email) {
		s.session.PrependOrder(order)
	}

	var email string
	if order.Customer != nil {
		email = order.Customer.Email
	}
	_ = s.dispatcher.Dispatch(model.OrderPlaced{OrderID: orderID, CustomerEmail: email, TotalCents: total})
	for _, line := range order.Lines {
		_ = s.dispatcher.Dispatch(model.StockChanged{
			ProductID:    line.ProductID,
			ChangeAmount: -line.Quantity,
		})
	}

	return order, nil
}
