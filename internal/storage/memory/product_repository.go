package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
// Мьютекс делает check-and-decrement неделимым: никакая другая горутина не
// может изменить остаток между проверкой и списанием.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
	skus  map[string]string
}

// NewProductRepository возвращает in-memory репозиторий для локальной
// разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
		skus:  make(map[string]string),
	}
}

// Create сохраняет новый товар, если ID и SKU ещё не заняты.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrProductExists
	}
	if _, exists := r.skus[product.SKU]; exists {
		return domain.ErrProductExists
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[product.ID] = product
	r.skus[product.SKU] = product.ID
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает все товары, отсортированные по названию.
func (r *productRepositoryInMemory) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// DecrementQuantity атомарно списывает qty единиц, не допуская ухода в минус.
func (r *productRepositoryInMemory) DecrementQuantity(_ context.Context, id string, qty int32) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return 0, domain.ErrProductNotFound
	}
	if product.Quantity < qty {
		return 0, domain.ErrInsufficientStock
	}
	product.Quantity -= qty
	r.items[id] = product
	return product.Quantity, nil
}

// IncrementQuantity атомарно возвращает qty единиц на остаток.
func (r *productRepositoryInMemory) IncrementQuantity(_ context.Context, id string, qty int32) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return 0, domain.ErrProductNotFound
	}
	product.Quantity += qty
	r.items[id] = product
	return product.Quantity, nil
}

// Delete удаляет товар и освобождает его SKU.
func (r *productRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	delete(r.skus, product.SKU)
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
