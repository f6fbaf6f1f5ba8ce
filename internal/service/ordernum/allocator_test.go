package ordernum

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

func TestAllocator_Format(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(memory.NewCounterRepository())
	at := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	number, err := alloc.Allocate(ctx, at)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if number != "ORD-250115-0001" {
		t.Fatalf("expected ORD-250115-0001, got %s", number)
	}

	number, err = alloc.Allocate(ctx, at)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if number != "ORD-250115-0002" {
		t.Fatalf("expected ORD-250115-0002, got %s", number)
	}
}

func TestAllocator_DayBoundaryResetsSequence(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(memory.NewCounterRepository())

	endOfDay := time.Date(2025, 1, 15, 23, 59, 59, 0, time.UTC)
	if _, err := alloc.Allocate(ctx, endOfDay); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	nextDay := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	number, err := alloc.Allocate(ctx, nextDay)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if number != "ORD-250116-0001" {
		t.Fatalf("expected sequence reset on new day, got %s", number)
	}
}

// Свойство уникальности: M конкурентных выделений в один день дают M различных
// номеров с суффиксами 0001..000M.
func TestAllocator_ConcurrentDistinct(t *testing.T) {
	ctx := context.Background()
	alloc := NewAllocator(memory.NewCounterRepository())
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	const m = 50
	var wg sync.WaitGroup
	numbers := make(chan string, m)

	for i := 0; i < m; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := alloc.Allocate(ctx, at)
			if err != nil {
				t.Errorf("allocate failed: %v", err)
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate order number %s", number)
		}
		seen[number] = true
	}
	if len(seen) != m {
		t.Fatalf("expected %d distinct numbers, got %d", m, len(seen))
	}
	for i := 1; i <= m; i++ {
		want := fmt.Sprintf("ORD-250115-%04d", i)
		if !seen[want] {
			t.Fatalf("missing expected number %s", want)
		}
	}
}
