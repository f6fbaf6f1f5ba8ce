package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type counterRepository struct {
	db *sql.DB
}

// NewCounterRepository создаёт PostgreSQL-реализацию CounterRepository.
func NewCounterRepository(store *Store) domain.CounterRepository {
	return &counterRepository{db: store.DB()}
}

// Next инкрементирует счётчик ключа одним UPSERT: гонки конкурентных вызовов
// разрешает сама база, каждый вызов получает своё значение.
func (r *counterRepository) Next(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var seq int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO order_counters (day_key, seq, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (day_key)
		DO UPDATE SET seq = order_counters.seq + 1, updated_at = NOW()
		RETURNING seq
	`, key).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next counter value: %w", err)
	}

	return seq, nil
}

var _ domain.CounterRepository = (*counterRepository)(nil)
