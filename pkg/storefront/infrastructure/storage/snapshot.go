package storage

import (
	"encoding/json"
	"os"

	"storefront/pkg/storefront/domain/model"
)

type catalogJSON struct {
	Products []*model.Product `json:"products"`
}

// LoadCatalog reads a catalog snapshot from disk. Used in development
// mode so an admin-edited catalog survives restarts without a
// database.
func LoadCatalog(filePath string) ([]*model.Product, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var data catalogJSON
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, err
	}
	if data.Products == nil {
		return []*model.Product{}, nil
	}
	return data.Products, nil
}

func SaveCatalog(filePath string, products []*model.Product) error {
	jsonData, err := json.MarshalIndent(catalogJSON{Products: products}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, 0666)
}
