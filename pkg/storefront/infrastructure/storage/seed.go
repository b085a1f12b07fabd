package storage

import (
	"time"

	"storefront/pkg/storefront/domain/model"
)

// SeedCatalog is the fallback showcase used when the store starts with
// an empty catalog and no snapshot to restore.
func SeedCatalog() []*model.Product {
	now := time.Now().UTC()
	return []*model.Product{
		{
			ID:          "PROD-SEED-1",
			Name:        "Volcán Osorno (La Clásica)",
			Description: "Nuestra firma. Galleta de mantequilla sureña con un cráter de manjar casero y lluvia de chocolate belga.",
			PriceCents:  1500,
			Stock:       50,
			ImageURL:    "https://images.unsplash.com/photo-1618923850107-d1a234d7a73a?q=80&w=800&auto=format&fit=crop",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "PROD-SEED-2",
			Name:        "Lava de Chocolate (Full Cacao)",
			Description: "Para los intensos. Masa de cacao 70% con centro líquido de ganache que explota al morder. Tibia es una locura.",
			PriceCents:  1800,
			Stock:       30,
			ImageURL:    "https://images.unsplash.com/photo-1606313564200-e75d5e30476c?q=80&w=800&auto=format&fit=crop",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "PROD-SEED-3",
			Name:        "Nevada de Limón (La Fresca)",
			Description: "Inspirada en las cumbres nevadas. Galleta suave de limón sutil, bañada en glaseado real y zest de limón de Pica.",
			PriceCents:  1500,
			Stock:       40,
			ImageURL:    "https://images.unsplash.com/photo-1558961363-fa8fdf82db35?q=80&w=800&auto=format&fit=crop",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
