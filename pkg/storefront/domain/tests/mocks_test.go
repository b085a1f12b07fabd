package tests

import (
	"fmt"
	"strings"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

type mockEventDispatcher struct {
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}

type mockCartStore struct {
	snapshot []model.CartLine
	saves    int
	clears   int
	saveErr  error
	clearErr error
}

func (m *mockCartStore) Load() ([]model.CartLine, error) {
	lines := make([]model.CartLine, len(m.snapshot))
	copy(lines, m.snapshot)
	return lines, nil
}

func (m *mockCartStore) Save(lines []model.CartLine) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snapshot = make([]model.CartLine, len(lines))
	copy(m.snapshot, lines)
	return nil
}

func (m *mockCartStore) Clear() error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clears++
	m.snapshot = nil
	return nil
}

type mockProductRepository struct {
	store map[model.ProductID]*model.Product
	ids   []model.ProductID
	seq   int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{store: make(map[model.ProductID]*model.Product)}
}

func (m *mockProductRepository) NextID() (model.ProductID, error) {
	m.seq++
	return model.ProductID(fmt.Sprintf("PROD-%04d", m.seq)), nil
}

func (m *mockProductRepository) Store(p *model.Product) error {
	if _, ok := m.store[p.ID]; !ok {
		m.ids = append(m.ids, p.ID)
	}
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockProductRepository) Find(id model.ProductID) (*model.Product, error) {
	if p, ok := m.store[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, model.ErrProductNotFound
}

func (m *mockProductRepository) List() ([]*model.Product, error) {
	result := make([]*model.Product, 0, len(m.ids))
	for _, id := range m.ids {
		if p, ok := m.store[id]; ok {
			clone := *p
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *mockProductRepository) Remove(id model.ProductID) error {
	if _, ok := m.store[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockProductRepository) ReplaceAll(products []*model.Product) error {
	m.store = make(map[model.ProductID]*model.Product, len(products))
	m.ids = nil
	for _, p := range products {
		clone := *p
		m.store[p.ID] = &clone
		m.ids = append(m.ids, p.ID)
	}
	return nil
}

type mockOrderRepository struct {
	orders []*model.Order
	seq    int
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{}
}

func (m *mockOrderRepository) NextID() (model.OrderID, error) {
	m.seq++
	return model.OrderID(fmt.Sprintf("ORD-%04d", m.seq)), nil
}

func (m *mockOrderRepository) Create(order *model.Order) error {
	m.orders = append([]*model.Order{cloneOrder(order)}, m.orders...)
	return nil
}

func (m *mockOrderRepository) Find(id model.OrderID) (*model.Order, error) {
	for _, order := range m.orders {
		if order.ID == id {
			return cloneOrder(order), nil
		}
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepository) Update(order *model.Order) error {
	for i, existing := range m.orders {
		if existing.ID == order.ID {
			m.orders[i] = cloneOrder(order)
			return nil
		}
	}
	return model.ErrOrderNotFound
}

func (m *mockOrderRepository) ListAll() ([]*model.Order, error) {
	result := make([]*model.Order, 0, len(m.orders))
	for _, order := range m.orders {
		result = append(result, cloneOrder(order))
	}
	return result, nil
}

func (m *mockOrderRepository) ListByEmail(email string) ([]*model.Order, error) {
	result := make([]*model.Order, 0)
	for _, order := range m.orders {
		if order.OwnedBy(email) {
			result = append(result, cloneOrder(order))
		}
	}
	return result, nil
}

type mockUserRepository struct {
	store map[string]*model.User
	seq   int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{store: make(map[string]*model.User)}
}

func (m *mockUserRepository) NextID() (model.UserID, error) {
	m.seq++
	return model.UserID(fmt.Sprintf("USR-%04d", m.seq)), nil
}

func (m *mockUserRepository) FindByEmail(email string) (*model.User, error) {
	if user, ok := m.store[lowered(email)]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Store(user *model.User) error {
	clone := *user
	m.store[lowered(user.Email)] = &clone
	return nil
}

// mockPlacer mirrors the production stores: one step that records the
// order and applies floored stock decrements.
type mockPlacer struct {
	products *mockProductRepository
	orders   *mockOrderRepository
	err      error
}

func (m *mockPlacer) PlaceOrder(order *model.Order, reserved map[model.ProductID]int) error {
	if m.err != nil {
		return m.err
	}
	for productID, quantity := range reserved {
		product, ok := m.products.store[productID]
		if !ok {
			continue
		}
		product.Stock -= quantity
		if product.Stock < 0 {
			product.Stock = 0
		}
	}
	return m.orders.Create(order)
}

func cloneOrder(order *model.Order) *model.Order {
	clone := *order
	clone.Lines = make([]model.OrderLine, len(order.Lines))
	copy(clone.Lines, order.Lines)
	if order.Customer != nil {
		customer := *order.Customer
		clone.Customer = &customer
	}
	return &clone
}

func lowered(s string) string {
	return strings.ToLower(s)
}
