package service

import (
	"time"

	"storefront/pkg/storefront/domain/model"
)

// CatalogService is the admin surface over the product catalog. Stock
// only ever grows through an explicit edit here; the only thing that
// shrinks it is order placement.
type CatalogService interface {
	CreateProduct(name, description string, priceCents int64, stock int, imageURL string) (*model.Product, error)
	UpdateProduct(id model.ProductID, name, description string, priceCents int64, stock int, imageURL string) error
	RemoveProduct(id model.ProductID) error
	ReplaceCatalog(products []*model.Product) error
	ClearCatalog() error
	Products() ([]*model.Product, error)
	Product(id model.ProductID) (*model.Product, error)
}

func NewCatalogService(repo model.ProductRepository, dispatcher EventDispatcher) CatalogService {
	return &catalogService{repo: repo, dispatcher: dispatcher}
}

type catalogService struct {
	repo       model.ProductRepository
	dispatcher EventDispatcher
}

func (s *catalogService) CreateProduct(name, description string, priceCents int64, stock int, imageURL string) (*model.Product, error) {
	if priceCents < 0 {
		return nil, model.ErrInvalidPrice
	}
	if stock < 0 {
		return nil, model.ErrInvalidStock
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		Name:        name,
		Description: description,
		PriceCents:  priceCents,
		Stock:       stock,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Store(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: name})
	return product, nil
}

func (s *catalogService) UpdateProduct(id model.ProductID, name, description string, priceCents int64, stock int, imageURL string) error {
	if priceCents < 0 {
		return model.ErrInvalidPrice
	}
	if stock < 0 {
		return model.ErrInvalidStock
	}

	product, err := s.repo.Find(id)
	if err != nil {
		return err
	}

	oldStock := product.Stock
	product.Name = name
	product.Description = description
	product.PriceCents = priceCents
	product.Stock = stock
	product.ImageURL = imageURL
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Store(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductUpdated{ProductID: id})
	if stock != oldStock {
		_ = s.dispatcher.Dispatch(model.StockChanged{
			ProductID:    id,
			ChangeAmount: stock - oldStock,
			NewQuantity:  stock,
		})
	}
	return nil
}

func (s *catalogService) RemoveProduct(id model.ProductID) error {
	if err := s.repo.Remove(id); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.ProductRemoved{ProductID: id})
	return nil
}

func (s *catalogService) ReplaceCatalog(products []*model.Product) error {
	for _, product := range products {
		if product.PriceCents < 0 {
			return model.ErrInvalidPrice
		}
		if product.Stock < 0 {
			return model.ErrInvalidStock
		}
	}
	if err := s.repo.ReplaceAll(products); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.CatalogReplaced{ProductCount: len(products)})
	return nil
}

func (s *catalogService) ClearCatalog() error {
	return s.ReplaceCatalog(nil)
}

func (s *catalogService) Products() ([]*model.Product, error) {
	return s.repo.List()
}

func (s *catalogService) Product(id model.ProductID) (*model.Product, error) {
	return s.repo.Find(id)
}
