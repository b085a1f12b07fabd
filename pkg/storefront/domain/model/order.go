package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrUnknownStatus     = errors.New("unknown order status")
)

type OrderStatus int

const (
	StatusPending OrderStatus = iota
	StatusConfirmed
	StatusDelivered
	StatusCancelled
)

// Wire names match what customers and the fulfillment chat actually see.
var statusNames = map[OrderStatus]string{
	StatusPending:   "Pendiente",
	StatusConfirmed: "Confirmado",
	StatusDelivered: "Entregado",
	StatusCancelled: "Cancelado",
}

func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

func ParseOrderStatus(name string) (OrderStatus, error) {
	for status, statusName := range statusNames {
		if statusName == name {
			return status, nil
		}
	}
	return StatusPending, ErrUnknownStatus
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, ErrUnknownStatus
	}
	return json.Marshal(name)
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	status, err := ParseOrderStatus(name)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// CanTransitionTo reports whether the admin surface allows moving an
// order from s to next. Cancelled is a defined state with no exposed
// transition into it.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusPending || next == StatusDelivered
	case StatusDelivered:
		return next == StatusConfirmed
	default:
		return false
	}
}

type OrderID string

type Customer struct {
	Name  string
	Email string
}

// OrderLine captures price at order time. It is never recomputed from
// the live catalog.
type OrderLine struct {
	ProductID  ProductID
	Name       string
	Quantity   int
	PriceCents int64
}

type Order struct {
	ID         OrderID
	CreatedAt  time.Time
	Lines      []OrderLine
	TotalCents int64
	Status     OrderStatus
	Customer   *Customer
}

// OwnedBy reports whether the order belongs to the given email.
// Anonymous orders belong to nobody.
func (o *Order) OwnedBy(email string) bool {
	return o.Customer != nil && equalFold(o.Customer.Email, email)
}

// OrderRepository is the single authoritative ledger. Personal views
// are filtered queries over it, never separate copies, so a status
// write is visible to every reader immediately.
type OrderRepository interface {
	NextID() (OrderID, error)
	Create(order *Order) error
	Find(id OrderID) (*Order, error)
	Update(order *Order) error
	ListAll() ([]*Order, error)
	ListByEmail(email string) ([]*Order, error)
}

// OrderPlacer records a new order and applies the matching stock
// decrements as one step. Stock never drops below zero. Either both
// effects land or neither does.
type OrderPlacer interface {
	PlaceOrder(order *Order, reserved map[ProductID]int) error
}
