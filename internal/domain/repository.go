package domain

import (
	"context"
	"time"
)

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID
	// уже существует, либо ErrOrderNumberConflict при совпадении номера.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает заказы по фильтру, отсортированные по убыванию CreatedAt.
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(ctx context.Context, order Order) error
	// Delete удаляет заказ или возвращает ErrOrderNotFound.
	Delete(ctx context.Context, id string) error
}

// OrderFilter задаёт критерии выборки заказов.
type OrderFilter struct {
	// Status фильтрует по статусу, если не пуст.
	Status OrderStatus
	// From/To ограничивают CreatedAt включительно; нулевое время не учитывается.
	From time.Time
	To   time.Time
	// Limit > 0 ограничивает размер выборки.
	Limit int
}

// ProductRepository описывает требования к хранилищу товаров. Операции со
// стоком атомарны на уровне одной записи: check-and-decrement выполняется как
// одно неделимое изменение, без отдельного read-then-write.
type ProductRepository interface {
	// Create сохраняет новый товар; ErrProductExists при конфликте ID или SKU.
	Create(ctx context.Context, product Product) error
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// List возвращает все товары, отсортированные по названию.
	List(ctx context.Context) ([]Product, error)
	// DecrementQuantity атомарно уменьшает остаток на qty и возвращает новое
	// значение. ErrInsufficientStock, если qty больше текущего остатка;
	// ErrProductNotFound, если товара нет.
	DecrementQuantity(ctx context.Context, id string, qty int32) (int32, error)
	// IncrementQuantity атомарно увеличивает остаток на qty и возвращает
	// новое значение. ErrProductNotFound, если товара нет.
	IncrementQuantity(ctx context.Context, id string, qty int32) (int32, error)
	// Delete удаляет товар или возвращает ErrProductNotFound.
	Delete(ctx context.Context, id string) error
}

// CounterRepository выдаёт атомарно возрастающие значения по ключу. Движок
// использует его для нумерации заказов: ключ — календарный день.
type CounterRepository interface {
	// Next атомарно инкрементирует счётчик ключа и возвращает новое значение;
	// для нового ключа возвращает 1.
	Next(ctx context.Context, key string) (int64, error)
}

// StatusHistoryRepository хранит историю переходов статуса заказа.
type StatusHistoryRepository interface {
	Append(ctx context.Context, event StatusHistoryEvent) error
	List(ctx context.Context, orderID string) ([]StatusHistoryEvent, error)
}
