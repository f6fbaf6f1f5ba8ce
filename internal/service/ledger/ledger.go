// Пакет ledger реализует складскую книгу: единственную точку истины для
// остатков товара. Каждая операция атомарна на уровне одной записи товара —
// check-and-decrement выполняется хранилищем как одно неделимое изменение,
// поэтому вызывающий код не держит никаких блокировок.
package ledger

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
)

// Ledger управляет остатками товаров через ProductRepository.
type Ledger struct {
	products domain.ProductRepository
	logger   *log.Entry
	metrics  *metrics.EngineMetrics
	producer *kafka.Producer // опциональный producer для событий stock.low
}

// NewLedger создаёт рабочий экземпляр складской книги.
func NewLedger(products domain.ProductRepository, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "ledger")
	}
	return &Ledger{
		products: products,
		logger:   logger,
		metrics:  metrics.NewEngineMetrics(),
	}
}

// NewLedgerWithKafka создаёт складскую книгу с публикацией событий остатков.
func NewLedgerWithKafka(products domain.ProductRepository, producer *kafka.Producer, logger *log.Entry) *Ledger {
	l := NewLedger(products, logger)
	l.producer = producer
	return l
}

// NewLedgerWithoutMetrics создаёт складскую книгу без метрик (для тестов).
func NewLedgerWithoutMetrics(products domain.ProductRepository, logger *log.Entry) *Ledger {
	l := NewLedger(products, logger)
	l.metrics = nil
	return l
}

// Reserve атомарно списывает qty единиц товара под заказ и возвращает новый
// остаток. ErrInsufficientStock, если qty больше остатка; ErrProductNotFound,
// если товара нет; ErrQtyInvalid при qty <= 0.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int32) (int32, error) {
	if qty <= 0 {
		return 0, domain.ErrQtyInvalid
	}

	remaining, err := l.products.DecrementQuantity(ctx, productID, qty)
	if err != nil {
		if domain.IsInsufficientStock(err) && l.metrics != nil {
			l.metrics.RecordReserveRejected()
		}
		l.logger.WithError(err).WithFields(log.Fields{
			"product_id": productID,
			"qty":        qty,
		}).Warn("reserve failed")
		return 0, err
	}

	if l.metrics != nil {
		l.metrics.RecordStockReserved(qty)
	}
	l.checkLowStock(ctx, productID, remaining)
	return remaining, nil
}

// Restore атомарно возвращает qty единиц на остаток. Ограничений сверху нет:
// восстановление всегда допустимо. ErrProductNotFound, если товар исчез из
// каталога — вызывающая сторона логирует и продолжает обработку пакета.
func (l *Ledger) Restore(ctx context.Context, productID string, qty int32) (int32, error) {
	if qty <= 0 {
		return 0, domain.ErrQtyInvalid
	}

	remaining, err := l.products.IncrementQuantity(ctx, productID, qty)
	if err != nil {
		if l.metrics != nil {
			l.metrics.RecordRestoreFailed()
		}
		l.logger.WithError(err).WithFields(log.Fields{
			"product_id": productID,
			"qty":        qty,
		}).Warn("restore failed")
		return 0, err
	}

	if l.metrics != nil {
		l.metrics.RecordStockRestored(qty)
	}
	return remaining, nil
}

// Adjust выполняет ручную корректировку остатка вне потока заказов.
// Уменьшение подчиняется тем же правилам достаточности, что и резервирование.
func (l *Ledger) Adjust(ctx context.Context, productID string, qty int32, direction domain.AdjustDirection) (int32, error) {
	if qty <= 0 {
		return 0, domain.ErrQtyInvalid
	}

	var (
		remaining int32
		err       error
	)
	switch direction {
	case domain.AdjustIncrease:
		remaining, err = l.products.IncrementQuantity(ctx, productID, qty)
	case domain.AdjustDecrease:
		remaining, err = l.products.DecrementQuantity(ctx, productID, qty)
	default:
		return 0, domain.ErrInvalidAdjustment
	}
	if err != nil {
		l.logger.WithError(err).WithFields(log.Fields{
			"product_id": productID,
			"qty":        qty,
			"direction":  direction,
		}).Warn("adjust failed")
		return 0, err
	}

	l.logger.WithFields(log.Fields{
		"product_id": productID,
		"qty":        qty,
		"direction":  direction,
		"remaining":  remaining,
	}).Info("inventory adjusted")
	l.publishStockEvent(kafka.EventTypeStockAdjusted, productID, "", remaining, map[string]interface{}{
		"qty":       qty,
		"direction": string(direction),
	})
	return remaining, nil
}

// LowStockReport делит товары на заканчивающиеся и отсутствующие.
type LowStockReport struct {
	LowStock   []domain.Product
	OutOfStock []domain.Product
}

// LowStock возвращает товары с остатком не выше порога и товары с нулевым
// остатком.
func (l *Ledger) LowStock(ctx context.Context) (LowStockReport, error) {
	products, err := l.products.List(ctx)
	if err != nil {
		return LowStockReport{}, err
	}

	report := LowStockReport{
		LowStock:   make([]domain.Product, 0),
		OutOfStock: make([]domain.Product, 0),
	}
	for _, product := range products {
		switch product.StockStatus() {
		case domain.StockStatusLowStock:
			report.LowStock = append(report.LowStock, product)
		case domain.StockStatusOutOfStock:
			report.OutOfStock = append(report.OutOfStock, product)
		}
	}
	return report, nil
}

// Stats собирает сводку по складу.
func (l *Ledger) Stats(ctx context.Context) (domain.InventoryStats, error) {
	products, err := l.products.List(ctx)
	if err != nil {
		return domain.InventoryStats{}, err
	}

	stats := domain.InventoryStats{TotalProducts: len(products)}
	for _, product := range products {
		stats.TotalQuantity += int64(product.Quantity)
		stats.TotalValueMinor += product.PriceMinor * int64(product.Quantity)
		switch product.StockStatus() {
		case domain.StockStatusLowStock:
			stats.LowStockCount++
		case domain.StockStatusOutOfStock:
			stats.OutOfStockCount++
		}
	}
	return stats, nil
}

// checkLowStock после списания сверяет остаток с порогом товара и при
// необходимости сигнализирует о заканчивающемся стоке.
func (l *Ledger) checkLowStock(ctx context.Context, productID string, remaining int32) {
	product, err := l.products.Get(ctx, productID)
	if err != nil {
		return
	}
	if remaining > product.LowStockThreshold {
		return
	}

	if l.metrics != nil {
		l.metrics.RecordLowStock()
	}
	l.logger.WithFields(log.Fields{
		"product_id": productID,
		"sku":        product.SKU,
		"remaining":  remaining,
		"threshold":  product.LowStockThreshold,
	}).Warn("product stock is low")
	l.publishStockEvent(kafka.EventTypeStockLow, productID, product.SKU, remaining, map[string]interface{}{
		"threshold": product.LowStockThreshold,
	})
}

// publishStockEvent публикует событие остатков в Kafka (если producer настроен).
func (l *Ledger) publishStockEvent(eventType kafka.EventType, productID, sku string, quantity int32, metadata map[string]interface{}) {
	if l.producer == nil {
		return
	}

	event := kafka.NewStockEvent(eventType, productID, sku, quantity, metadata)
	if err := l.producer.PublishEvent(kafka.TopicStockEvents, productID, event); err != nil {
		// Kafka опциональна: ошибка публикации не прерывает операцию.
		l.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"product_id": productID,
		}).Warn("failed to publish stock event to kafka")
	}
}
