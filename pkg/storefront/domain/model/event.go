package model

type ProductCreated struct {
	ProductID ProductID
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductUpdated struct {
	ProductID ProductID
}

func (e ProductUpdated) Type() string { return "ProductUpdated" }

type ProductRemoved struct {
	ProductID ProductID
}

func (e ProductRemoved) Type() string { return "ProductRemoved" }

type CatalogReplaced struct {
	ProductCount int
}

func (e CatalogReplaced) Type() string { return "CatalogReplaced" }

type StockChanged struct {
	ProductID    ProductID
	ChangeAmount int
	NewQuantity  int
}

func (e StockChanged) Type() string { return "StockChanged" }

type OrderPlaced struct {
	OrderID       OrderID
	CustomerEmail string
	TotalCents    int64
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }

type OrderStatusChanged struct {
	OrderID   OrderID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }

type UserLoggedIn struct {
	UserID  UserID
	Email   string
	IsAdmin bool
}

func (e UserLoggedIn) Type() string { return "UserLoggedIn" }
