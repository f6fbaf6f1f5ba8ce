package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// counterRepositoryInMemory хранит счётчики под одним мьютексом: инкремент
// и чтение нового значения неделимы относительно других вызовов.
type counterRepositoryInMemory struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewCounterRepository возвращает in-memory реализацию CounterRepository.
func NewCounterRepository() domain.CounterRepository {
	return &counterRepositoryInMemory{counters: make(map[string]int64)}
}

// Next атомарно инкрементирует счётчик ключа; для нового ключа возвращает 1.
func (r *counterRepositoryInMemory) Next(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[key]++
	return r.counters[key], nil
}

var _ domain.CounterRepository = (*counterRepositoryInMemory)(nil)
