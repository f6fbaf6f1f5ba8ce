// Пакет catalog реализует Catalog Lookup: разрешение слабой ссылки на товар
// в снимок его текущего имени, SKU, цены и остатка. Движок читает снимок и
// никогда не мутирует каталог через этот порт.
package catalog

import (
	"context"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Service — реализация CatalogService поверх ProductRepository.
type Service struct {
	products domain.ProductRepository
}

// NewService создаёт каталожный сервис.
func NewService(products domain.ProductRepository) *Service {
	return &Service{products: products}
}

// Resolve возвращает снимок товара или ErrProductNotFound.
func (s *Service) Resolve(ctx context.Context, productID string) (domain.ProductSnapshot, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	return domain.ProductSnapshot{
		ProductID:  product.ID,
		Name:       product.Name,
		SKU:        product.SKU,
		PriceMinor: product.PriceMinor,
		Quantity:   product.Quantity,
	}, nil
}

var _ domain.CatalogService = (*Service)(nil)
