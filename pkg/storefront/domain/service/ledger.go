package service

import (
	"storefront/pkg/storefront/domain/model"
)

// LedgerService owns the order status state machine. All reads go
// through the single authoritative order repository; the session cache
// is refreshed in the same call so every view of an order agrees on
// its status once SetStatus returns.
type LedgerService interface {
	SetStatus(orderID model.OrderID, status model.OrderStatus) error
	AllOrders() ([]*model.Order, error)
	OrdersFor(email string) ([]*model.Order, error)
	ActiveOrders() ([]*model.Order, error)
	FinishedOrders() ([]*model.Order, error)
}

func NewLedgerService(repo model.OrderRepository, session *SessionCache, dispatcher EventDispatcher) LedgerService {
	return &ledgerService{repo: repo, session: session, dispatcher: dispatcher}
}

type ledgerService struct {
	repo       model.OrderRepository
	session    *SessionCache
	dispatcher EventDispatcher
}

func (s *ledgerService) SetStatus(orderID model.OrderID, status model.OrderStatus) error {
	order, err := s.repo.Find(orderID)
	if err != nil {
		return err
	}

	oldStatus := order.Status
	if oldStatus == status {
		// Idempotent: re-applying the current status changes nothing.
		return nil
	}
	if !oldStatus.CanTransitionTo(status) {
		return model.ErrInvalidTransition
	}

	order.Status = status
	if err := s.repo.Update(order); err != nil {
		return err
	}

	if s.session != nil {
		s.session.ApplyStatus(orderID, status)
	}

	_ = s.dispatcher.Dispatch(model.OrderStatusChanged{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return nil
}

func (s *ledgerService) AllOrders() ([]*model.Order, error) {
	return s.repo.ListAll()
}

func (s *ledgerService) OrdersFor(email string) ([]*model.Order, error) {
	return s.repo.ListByEmail(email)
}

// ActiveOrders returns the admin work queue: everything still pending
// validation or being prepared.
func (s *ledgerService) ActiveOrders() ([]*model.Order, error) {
	return s.filtered(func(o *model.Order) bool {
		return o.Status == model.StatusPending || o.Status == model.StatusConfirmed
	})
}

func (s *ledgerService) FinishedOrders() ([]*model.Order, error) {
	return s.filtered(func(o *model.Order) bool {
		return o.Status == model.StatusDelivered || o.Status == model.StatusCancelled
	})
}

func (s *ledgerService) filtered(keep func(*model.Order) bool) ([]*model.Order, error) {
	orders, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	result := make([]*model.Order, 0, len(orders))
	for _, order := range orders {
		if keep(order) {
			result = append(result, order)
		}
	}
	return result, nil
}
