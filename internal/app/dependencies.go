package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/clock"
	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/catalog"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
	"github.com/vladislavdragonenkov/pos/internal/storage/postgres"
)

// Dependencies содержит хранилища и порты движка.
type Dependencies struct {
	Products domain.ProductRepository
	Orders   domain.OrderRepository
	Counters domain.CounterRepository
	History  domain.StatusHistoryRepository
	Catalog  domain.CatalogService
	Clock    domain.Clock
	Logger   *log.Entry
}

// NewMemoryDependencies собирает зависимости поверх in-memory хранилищ;
// используется для локальной разработки и демо без базы.
func NewMemoryDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	products := memory.NewProductRepository()
	return &Dependencies{
		Products: products,
		Orders:   memory.NewOrderRepository(),
		Counters: memory.NewCounterRepository(),
		History:  memory.NewStatusHistoryRepository(),
		Catalog:  catalog.NewService(products),
		Clock:    clock.System(),
		Logger:   logger,
	}
}

// NewPostgresDependencies собирает зависимости поверх PostgreSQL.
func NewPostgresDependencies(store *postgres.Store, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	products := postgres.NewProductRepository(store)
	return &Dependencies{
		Products: products,
		Orders:   postgres.NewOrderRepository(store),
		Counters: postgres.NewCounterRepository(store),
		History:  postgres.NewStatusHistoryRepository(store),
		Catalog:  catalog.NewService(products),
		Clock:    clock.System(),
		Logger:   logger,
	}
}
