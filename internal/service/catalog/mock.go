package catalog

import (
	"context"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// MockService — конфигурируемая заглушка CatalogService для тестов.
type MockService struct {
	Snapshots  map[string]domain.ProductSnapshot
	ResolveErr error

	ResolveCalls int
}

// NewMockService возвращает mock с пустым каталогом.
func NewMockService() *MockService {
	return &MockService{Snapshots: make(map[string]domain.ProductSnapshot)}
}

// Add регистрирует снимок товара в каталоге-заглушке.
func (m *MockService) Add(snapshot domain.ProductSnapshot) {
	m.Snapshots[snapshot.ProductID] = snapshot
}

// Resolve возвращает настроенную ошибку либо снимок из карты; отсутствие
// снимка трактуется как ErrProductNotFound.
func (m *MockService) Resolve(_ context.Context, productID string) (domain.ProductSnapshot, error) {
	m.ResolveCalls++
	if m.ResolveErr != nil {
		return domain.ProductSnapshot{}, m.ResolveErr
	}
	snapshot, ok := m.Snapshots[productID]
	if !ok {
		return domain.ProductSnapshot{}, domain.ErrProductNotFound
	}
	return snapshot, nil
}

var _ domain.CatalogService = (*MockService)(nil)
