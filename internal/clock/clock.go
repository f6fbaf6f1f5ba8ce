// Пакет clock предоставляет инъецируемый источник времени, чтобы логика
// дневных границ и нумерации заказов была детерминированной в тестах.
package clock

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// systemClock читает системные часы.
type systemClock struct{}

// System возвращает часы, основанные на time.Now; время отдаётся в UTC,
// чтобы дневные ключи нумерации не зависели от таймзоны хоста.
func System() domain.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed — часы с управляемым временем для тестов.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed создаёт часы, остановленные на заданном моменте.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переводит часы на указанный момент.
func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance сдвигает часы вперёд на d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

var _ domain.Clock = systemClock{}
var _ domain.Clock = (*Fixed)(nil)
