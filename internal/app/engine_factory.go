package app

import (
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/lifecycle"
	"github.com/vladislavdragonenkov/pos/internal/service/ordernum"
)

// createLedger создаёт складскую книгу с публикацией событий остатков либо
// без неё, в зависимости от наличия producer.
func createLedger(deps *Dependencies, kafkaProducer *kafka.Producer) *ledger.Ledger {
	if kafkaProducer != nil {
		return ledger.NewLedgerWithKafka(deps.Products, kafkaProducer, deps.Logger)
	}
	return ledger.NewLedger(deps.Products, deps.Logger)
}

// createManager собирает менеджер жизненного цикла заказов поверх общих
// зависимостей.
func createManager(
	deps *Dependencies,
	stock *ledger.Ledger,
	kafkaProducer *kafka.Producer,
) *lifecycle.Manager {
	numbers := ordernum.NewAllocator(deps.Counters)

	if kafkaProducer != nil {
		return lifecycle.NewManagerWithKafka(
			deps.Orders,
			deps.History,
			stock,
			numbers,
			deps.Catalog,
			deps.Clock,
			kafkaProducer,
			deps.Logger,
		)
	}

	return lifecycle.NewManager(
		deps.Orders,
		deps.History,
		stock,
		numbers,
		deps.Catalog,
		deps.Clock,
		deps.Logger,
	)
}
