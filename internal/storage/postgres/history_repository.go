package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type statusHistoryRepository struct {
	db *sql.DB
}

// NewStatusHistoryRepository создаёт PostgreSQL-реализацию StatusHistoryRepository.
func NewStatusHistoryRepository(store *Store) domain.StatusHistoryRepository {
	return &statusHistoryRepository{db: store.DB()}
}

func (r *statusHistoryRepository) Append(ctx context.Context, event domain.StatusHistoryEvent) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO status_history (order_id, from_status, to_status, reason, occurred)
		VALUES ($1,$2,$3,$4,$5)
	`, event.OrderID, string(event.From), string(event.To), event.Reason, event.Occurred); err != nil {
		return fmt.Errorf("append status history event: %w", err)
	}

	return nil
}

func (r *statusHistoryRepository) List(ctx context.Context, orderID string) ([]domain.StatusHistoryEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, from_status, to_status, reason, occurred
		FROM status_history
		WHERE order_id = $1
		ORDER BY occurred ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	events := make([]domain.StatusHistoryEvent, 0)
	for rows.Next() {
		var (
			event domain.StatusHistoryEvent
			from  string
			to    string
		)
		if err := rows.Scan(&event.OrderID, &from, &to, &event.Reason, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan status history event: %w", err)
		}
		event.From = domain.OrderStatus(from)
		event.To = domain.OrderStatus(to)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}

	return events, nil
}

var _ domain.StatusHistoryRepository = (*statusHistoryRepository)(nil)
