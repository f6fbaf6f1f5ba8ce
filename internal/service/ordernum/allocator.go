// Пакет ordernum выдаёт человекочитаемые номера заказов вида ORD-YYMMDD-NNNN.
// Последовательность внутри календарного дня берётся из атомарного счётчика,
// а не из подсчёта существующих заказов: два конкурентных создания никогда не
// получат одинаковый номер.
package ordernum

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const numberPrefix = "ORD"

// Allocator выделяет номера заказов через CounterRepository.
type Allocator struct {
	counters domain.CounterRepository
}

// NewAllocator создаёт аллокатор поверх счётчиков.
func NewAllocator(counters domain.CounterRepository) *Allocator {
	return &Allocator{counters: counters}
}

// Allocate возвращает следующий номер заказа для календарного дня момента t.
// Границы дня считаются в локации t; первый заказ дня получает суффикс 0001.
func (a *Allocator) Allocate(ctx context.Context, t time.Time) (string, error) {
	seq, err := a.counters.Next(ctx, DayKey(t))
	if err != nil {
		return "", fmt.Errorf("next day counter: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", numberPrefix, t.Format("060102"), seq), nil
}

// DayKey возвращает ключ счётчика для календарного дня момента t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
