// Package seed loads the product catalog from a JSON file at startup.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

type productRecord struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// ReadProducts parses a JSON array of products. Records without a productId
// are rejected.
func ReadProducts(path string) ([]entity.Product, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var records []productRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}

	out := make([]entity.Product, 0, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.ProductID) == "" {
			return nil, fmt.Errorf("seed: record %d has no productId", i)
		}
		price, _ := r.Price.Round(2).Float64()
		out = append(out, entity.Product{
			ProductID:   r.ProductID,
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
			Image:       r.Image,
			Price:       price,
			Stock:       r.Stock,
		})
	}
	return out, nil
}

// Load seeds the catalog from path and returns how many products it wrote.
// An empty path is a no-op.
func Load(ctx context.Context, seeder ports.CatalogSeeder, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	products, err := ReadProducts(path)
	if err != nil {
		return 0, err
	}
	if err := seeder.SeedProducts(ctx, products); err != nil {
		return 0, fmt.Errorf("seed: write catalog: %w", err)
	}
	return len(products), nil
}
