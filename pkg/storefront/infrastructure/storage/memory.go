package storage

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
)

// MemoryStore backs every repository with process-local maps. It is
// the default when no database is configured and the fixture store for
// integration-style tests. Writes are last-write-wins, matching the
// shared-store semantics the storefront was designed around.
type MemoryStore struct {
	mu           sync.Mutex
	products     map[model.ProductID]*model.Product
	catalogOrder []model.ProductID
	orders       []*model.Order
	users        map[string]*model.User
	cart         []model.CartLine
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[model.ProductID]*model.Product),
		users:    make(map[string]*model.User),
	}
}

func (m *MemoryStore) Products() model.ProductRepository { return memoryProducts{m} }
func (m *MemoryStore) Orders() model.OrderRepository     { return memoryOrders{m} }
func (m *MemoryStore) Users() model.UserRepository       { return memoryUsers{m} }
func (m *MemoryStore) Cart() model.CartStore             { return memoryCart{m} }

// PlaceOrder appends the order and decrements stock under one lock, so
// a reader never observes the order without its stock effect. Stock is
// floored at zero.
func (m *MemoryStore) PlaceOrder(order *model.Order, reserved map[model.ProductID]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for productID, quantity := range reserved {
		product, ok := m.products[productID]
		if !ok {
			continue
		}
		product.Stock -= quantity
		if product.Stock < 0 {
			product.Stock = 0
		}
	}
	m.orders = append([]*model.Order{cloneOrder(order)}, m.orders...)
	return nil
}

type memoryProducts struct{ m *MemoryStore }

func (r memoryProducts) NextID() (model.ProductID, error) {
	return model.ProductID("PROD-" + strings.ToUpper(uuid.NewString())), nil
}

func (r memoryProducts) Store(product *model.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[product.ID]; !ok {
		r.m.catalogOrder = append(r.m.catalogOrder, product.ID)
	}
	clone := *product
	r.m.products[product.ID] = &clone
	return nil
}

func (r memoryProducts) Find(id model.ProductID) (*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	product, ok := r.m.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (r memoryProducts) List() ([]*model.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*model.Product, 0, len(r.m.products))
	for _, id := range r.m.catalogOrder {
		if product, ok := r.m.products[id]; ok {
			clone := *product
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r memoryProducts) Remove(id model.ProductID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(r.m.products, id)
	return nil
}

func (r memoryProducts) ReplaceAll(products []*model.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	replaced := make(map[model.ProductID]*model.Product, len(products))
	ids := make([]model.ProductID, 0, len(products))
	for _, product := range products {
		clone := *product
		replaced[product.ID] = &clone
		ids = append(ids, product.ID)
	}
	r.m.products = replaced
	r.m.catalogOrder = ids
	return nil
}

type memoryOrders struct{ m *MemoryStore }

func (r memoryOrders) NextID() (model.OrderID, error) {
	return model.OrderID("ORD-" + strings.ToUpper(uuid.NewString())), nil
}

func (r memoryOrders) Create(order *model.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.orders = append([]*model.Order{cloneOrder(order)}, r.m.orders...)
	return nil
}

func (r memoryOrders) Find(id model.OrderID) (*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, order := range r.m.orders {
		if order.ID == id {
			return cloneOrder(order), nil
		}
	}
	return nil, model.ErrOrderNotFound
}

func (r memoryOrders) Update(order *model.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, existing := range r.m.orders {
		if existing.ID == order.ID {
			r.m.orders[i] = cloneOrder(order)
			return nil
		}
	}
	return model.ErrOrderNotFound
}

func (r memoryOrders) ListAll() ([]*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*model.Order, 0, len(r.m.orders))
	for _, order := range r.m.orders {
		result = append(result, cloneOrder(order))
	}
	return result, nil
}

func (r memoryOrders) ListByEmail(email string) ([]*model.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*model.Order, 0)
	for _, order := range r.m.orders {
		if order.OwnedBy(email) {
			result = append(result, cloneOrder(order))
		}
	}
	return result, nil
}

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) NextID() (model.UserID, error) {
	return model.UserID(uuid.NewString()), nil
}

func (r memoryUsers) FindByEmail(email string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r memoryUsers) Store(user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	clone := *user
	r.m.users[strings.ToLower(user.Email)] = &clone
	return nil
}

type memoryCart struct{ m *MemoryStore }

func (c memoryCart) Load() ([]model.CartLine, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	lines := make([]model.CartLine, len(c.m.cart))
	copy(lines, c.m.cart)
	return lines, nil
}

func (c memoryCart) Save(lines []model.CartLine) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.cart = make([]model.CartLine, len(lines))
	copy(c.m.cart, lines)
	return nil
}

func (c memoryCart) Clear() error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	c.m.cart = nil
	return nil
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
