package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// historyRepositoryInMemory хранит события истории статусов по заказам.
type historyRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.StatusHistoryEvent
}

// NewStatusHistoryRepository возвращает in-memory реализацию
// StatusHistoryRepository.
func NewStatusHistoryRepository() domain.StatusHistoryRepository {
	return &historyRepositoryInMemory{events: make(map[string][]domain.StatusHistoryEvent)}
}

// Append добавляет событие в историю заказа.
func (r *historyRepositoryInMemory) Append(_ context.Context, event domain.StatusHistoryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrderID] = append(r.events[event.OrderID], event)
	return nil
}

// List возвращает события заказа в порядке добавления.
func (r *historyRepositoryInMemory) List(_ context.Context, orderID string) ([]domain.StatusHistoryEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.StatusHistoryEvent(nil), r.events[orderID]...), nil
}

var _ domain.StatusHistoryRepository = (*historyRepositoryInMemory)(nil)
