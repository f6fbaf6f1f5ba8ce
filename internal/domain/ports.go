package domain

import (
	"context"
	"time"
)

// CatalogService разрешает слабую ссылку на товар в снимок его текущего
// состояния. Движок использует каталог только на чтение.
type CatalogService interface {
	// Resolve возвращает снимок товара или ErrProductNotFound.
	Resolve(ctx context.Context, productID string) (ProductSnapshot, error)
}

// Clock отдаёт текущее время. Выделен в порт, чтобы логика дневных границ и
// нумерации заказов была детерминированной в тестах.
type Clock interface {
	Now() time.Time
}

// AdjustDirection — направление ручной корректировки остатка.
type AdjustDirection string

const (
	AdjustIncrease AdjustDirection = "increase"
	AdjustDecrease AdjustDirection = "decrease"
)

// StatusHistoryEvent — запись в истории статусов заказа.
type StatusHistoryEvent struct {
	OrderID string
	// From пуст для события создания заказа.
	From     OrderStatus
	To       OrderStatus
	Reason   string
	Occurred time.Time
}
