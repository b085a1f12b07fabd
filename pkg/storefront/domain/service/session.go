package service

import "storefront/pkg/storefront/domain/model"

// SessionCache holds the active identity and its personal order view
// for the lifetime of one shopper session. It exists so the UI can
// reflect a status change without reloading; the order ledger itself
// remains the single source of truth.
type SessionCache struct {
	user   *model.User
	orders []*model.Order
}

func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

func (s *SessionCache) SetUser(user *model.User) {
	s.user = user
}

func (s *SessionCache) User() *model.User {
	return s.user
}

func (s *SessionCache) SetOrders(orders []*model.Order) {
	s.orders = orders
}

func (s *SessionCache) Orders() []*model.Order {
	result := make([]*model.Order, len(s.orders))
	copy(result, s.orders)
	return result
}

// PrependOrder puts a freshly placed order at the head of the personal
// view, keeping the most-recent-first ordering.
func (s *SessionCache) PrependOrder(order *model.Order) {
	s.orders = append([]*model.Order{order}, s.orders...)
}

// ApplyStatus mirrors a ledger status write into the cached view. Every
// cached copy with the id is updated, not just the first match.
func (s *SessionCache) ApplyStatus(orderID model.OrderID, status model.OrderStatus) {
	for _, order := range s.orders {
		if order.ID == orderID {
			order.Status = status
		}
	}
}

// Clear drops the active identity and its cached orders. The ledger and
// the cart are untouched.
func (s *SessionCache) Clear() {
	s.user = nil
	s.orders = nil
}
