// Пакет lifecycle реализует оркестрацию жизненного цикла заказа: создание с
// резервированием стока, переходы статусов и удаление с возвратом стока.
// Резервирование идёт позиция за позицией в порядке входного запроса; при
// любом сбое до полного успеха уже взятые резервы возвращаются на склад, так
// что неполный заказ никогда не удерживает сток.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/ordernum"
)

// Manager координирует заказы, складскую книгу и аллокатор номеров.
type Manager struct {
	orders   domain.OrderRepository
	history  domain.StatusHistoryRepository
	ledger   *ledger.Ledger
	numbers  *ordernum.Allocator
	catalog  domain.CatalogService
	clock    domain.Clock
	logger   *log.Entry
	metrics  *metrics.EngineMetrics
	producer *kafka.Producer // опциональный Kafka producer для событий заказов
}

// NewManager создаёт рабочий экземпляр менеджера жизненного цикла.
func NewManager(
	orders domain.OrderRepository,
	history domain.StatusHistoryRepository,
	stock *ledger.Ledger,
	numbers *ordernum.Allocator,
	catalogSvc domain.CatalogService,
	clk domain.Clock,
	logger *log.Entry,
) *Manager {
	if logger == nil {
		logger = log.New().WithField("component", "lifecycle")
	}
	return &Manager{
		orders:  orders,
		history: history,
		ledger:  stock,
		numbers: numbers,
		catalog: catalogSvc,
		clock:   clk,
		logger:  logger,
		metrics: metrics.NewEngineMetrics(),
	}
}

// NewManagerWithKafka создаёт менеджер с публикацией событий заказов.
func NewManagerWithKafka(
	orders domain.OrderRepository,
	history domain.StatusHistoryRepository,
	stock *ledger.Ledger,
	numbers *ordernum.Allocator,
	catalogSvc domain.CatalogService,
	clk domain.Clock,
	producer *kafka.Producer,
	logger *log.Entry,
) *Manager {
	m := NewManager(orders, history, stock, numbers, catalogSvc, clk, logger)
	m.producer = producer
	return m
}

// NewManagerWithoutMetrics создаёт менеджер без метрик (для тестов).
func NewManagerWithoutMetrics(
	orders domain.OrderRepository,
	history domain.StatusHistoryRepository,
	stock *ledger.Ledger,
	numbers *ordernum.Allocator,
	catalogSvc domain.CatalogService,
	clk domain.Clock,
	logger *log.Entry,
) *Manager {
	m := NewManager(orders, history, stock, numbers, catalogSvc, clk, logger)
	m.metrics = nil
	return m
}

// CreateItemRequest — запрошенная позиция заказа.
type CreateItemRequest struct {
	ProductID string
	Qty       int32
	// UnitPriceMinor переопределяет цену каталога, если задан.
	UnitPriceMinor *int64
}

// CreateOrderRequest — входные данные создания заказа.
type CreateOrderRequest struct {
	Items         []CreateItemRequest
	TaxMinor      int64
	DiscountMinor int64
	Customer      domain.Customer
	Notes         string
	PaymentMethod domain.PaymentMethod
}

// reservedItem фиксирует успешно взятый резерв для возможного отката.
type reservedItem struct {
	productID string
	qty       int32
}

// Create создаёт заказ: разрешает каждую позицию через каталог, резервирует
// сток, формирует снимки цен, выделяет номер и сохраняет запись. Любой сбой
// до полного успеха возвращает уже взятые резервы на склад.
func (m *Manager) Create(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			m.metrics.RecordCreateDuration(time.Since(start))
		}
	}()

	if err := m.validateCreate(req); err != nil {
		m.recordCreateFailure("validation", err)
		return domain.Order{}, err
	}

	var (
		items    []domain.OrderItem
		reserved []reservedItem
		subtotal int64
	)

	for _, item := range req.Items {
		snapshot, err := m.catalog.Resolve(ctx, item.ProductID)
		if err != nil {
			m.rollbackReservations(ctx, reserved)
			m.recordCreateFailure("product_not_found", err)
			return domain.Order{}, err
		}

		if _, err := m.ledger.Reserve(ctx, item.ProductID, item.Qty); err != nil {
			m.rollbackReservations(ctx, reserved)
			reason := "reserve_failed"
			if domain.IsInsufficientStock(err) {
				reason = "insufficient_stock"
			}
			m.recordCreateFailure(reason, err)
			return domain.Order{}, err
		}
		reserved = append(reserved, reservedItem{productID: item.ProductID, qty: item.Qty})

		unitPrice := snapshot.PriceMinor
		if item.UnitPriceMinor != nil {
			unitPrice = *item.UnitPriceMinor
		}
		total := unitPrice * int64(item.Qty)
		subtotal += total

		items = append(items, domain.OrderItem{
			ID:              uuid.NewString(),
			ProductID:       snapshot.ProductID,
			ProductName:     snapshot.Name,
			SKU:             snapshot.SKU,
			Qty:             item.Qty,
			UnitPriceMinor:  unitPrice,
			TotalPriceMinor: total,
		})
	}

	// Часы читаются один раз: номер заказа и CreatedAt всегда относятся к
	// одному и тому же моменту, даже если создание пересекает полночь.
	now := m.clock.Now()
	number, err := m.numbers.Allocate(ctx, now)
	if err != nil {
		m.rollbackReservations(ctx, reserved)
		m.recordCreateFailure("allocate_number", err)
		return domain.Order{}, err
	}
	now = now.UTC()

	customer := req.Customer
	if customer.Name == "" {
		customer.Name = domain.DefaultCustomerName
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		Number:        number,
		Items:         items,
		SubtotalMinor: subtotal,
		TaxMinor:      req.TaxMinor,
		DiscountMinor: req.DiscountMinor,
		TotalMinor:    subtotal + req.TaxMinor - req.DiscountMinor,
		Status:        domain.OrderStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPaid,
		PaymentMethod: method,
		Customer:      customer,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		m.rollbackReservations(ctx, reserved)
		m.recordCreateFailure("invariants", errs[0])
		return domain.Order{}, errs[0]
	}

	if err := m.orders.Create(ctx, order); err != nil {
		m.rollbackReservations(ctx, reserved)
		m.recordCreateFailure("persist", err)
		return domain.Order{}, err
	}

	m.appendHistory(ctx, domain.StatusHistoryEvent{
		OrderID:  order.ID,
		To:       order.Status,
		Occurred: now,
	})
	if m.metrics != nil {
		m.metrics.RecordOrderCreated()
	}
	m.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"number":      order.Number,
		"items":       len(order.Items),
		"total_minor": order.TotalMinor,
	}).Info("order created")
	m.publishOrderEvent(kafka.EventTypeOrderCreated, &order, map[string]interface{}{
		"items_count": len(order.Items),
		"total_minor": order.TotalMinor,
	})

	return order, nil
}

// Get возвращает заказ по идентификатору.
func (m *Manager) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return m.orders.Get(ctx, orderID)
}

// List возвращает заказы по фильтру.
func (m *Manager) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !domain.ValidOrderStatus(filter.Status) {
		return nil, domain.ErrStatusInvalid
	}
	return m.orders.List(ctx, filter)
}

// History возвращает историю статусов заказа.
func (m *Manager) History(ctx context.Context, orderID string) ([]domain.StatusHistoryEvent, error) {
	if _, err := m.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return m.history.List(ctx, orderID)
}

// Transition переводит заказ в новый статус и/или статус оплаты. Переход в
// cancelled возвращает сток по каждой позиции до сохранения нового статуса;
// другие переходы сток не трогают. Пустой аргумент оставляет соответствующее
// поле без изменений; совпадающий статус — no-op без повторного возврата стока.
// Необязательный reason попадает в запись истории статусов.
func (m *Manager) Transition(ctx context.Context, orderID string, newStatus domain.OrderStatus, newPaymentStatus domain.PaymentStatus, reason string) (domain.Order, error) {
	if newStatus != "" && !domain.ValidOrderStatus(newStatus) {
		return domain.Order{}, domain.ErrStatusInvalid
	}
	if newPaymentStatus != "" && !domain.ValidPaymentStatus(newPaymentStatus) {
		return domain.Order{}, domain.ErrPaymentStatusInvalid
	}

	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	statusChanges := newStatus != "" && newStatus != order.Status
	if statusChanges && !order.Status.CanTransition(newStatus) {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	// Возврат стока выполняется ровно один раз: только при входе в cancelled
	// из статуса, который стоком ещё владеет.
	if statusChanges && newStatus == domain.OrderStatusCancelled {
		m.restoreItems(ctx, &order)
	}

	previous := order.Status
	if newStatus != "" {
		order.Status = newStatus
	}
	if newPaymentStatus != "" {
		order.PaymentStatus = newPaymentStatus
	}
	order.UpdatedAt = m.clock.Now().UTC()

	if err := m.saveWithRetry(ctx, &order); err != nil {
		return domain.Order{}, err
	}

	if statusChanges {
		m.appendHistory(ctx, domain.StatusHistoryEvent{
			OrderID:  order.ID,
			From:     previous,
			To:       order.Status,
			Reason:   reason,
			Occurred: order.UpdatedAt,
		})
		if m.metrics != nil {
			m.metrics.RecordOrderTransition(string(order.Status))
		}
		m.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"from":     previous,
			"to":       order.Status,
		}).Info("order status changed")

		eventType := kafka.EventTypeOrderStatus
		if order.Status == domain.OrderStatusCancelled {
			eventType = kafka.EventTypeOrderCancelled
			if m.metrics != nil {
				m.metrics.RecordOrderCancelled()
			}
		}
		m.publishOrderEvent(eventType, &order, map[string]interface{}{
			"from": string(previous),
		})
	}

	return order, nil
}

// Delete удаляет заказ. Если заказ не в конечном статусе, его позиции ещё
// удерживают сток, и он возвращается на склад перед удалением; для уже
// отменённых и возвращённых заказов повторного возврата не происходит.
func (m *Manager) Delete(ctx context.Context, orderID string) error {
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.Status.IsTerminal() {
		m.restoreItems(ctx, &order)
	}

	if err := m.orders.Delete(ctx, orderID); err != nil {
		return err
	}

	if m.metrics != nil {
		m.metrics.RecordOrderDeleted()
	}
	m.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"number":   order.Number,
		"status":   order.Status,
	}).Info("order deleted")
	m.publishOrderEvent(kafka.EventTypeOrderDeleted, &order, nil)

	return nil
}

// recordCreateFailure логирует и учитывает неудачное создание заказа.
func (m *Manager) recordCreateFailure(reason string, err error) {
	if m.metrics != nil {
		m.metrics.RecordOrderCreateFailed(reason)
	}
	m.logger.WithError(err).WithField("reason", reason).Warn("order creation failed")
}

// validateCreate проверяет вход до каких-либо обращений к стоку.
func (m *Manager) validateCreate(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return domain.ErrItemsRequired
	}
	for _, item := range req.Items {
		if item.Qty <= 0 {
			return domain.ErrItemQtyInvalid
		}
		if item.UnitPriceMinor != nil && *item.UnitPriceMinor < 0 {
			return domain.ErrItemPriceInvalid
		}
	}
	if req.TaxMinor < 0 || req.DiscountMinor < 0 {
		return domain.ErrAmountNegative
	}
	if req.PaymentMethod != "" && !domain.ValidPaymentMethod(req.PaymentMethod) {
		return domain.ErrPaymentMethodInvalid
	}
	return nil
}

// rollbackReservations возвращает уже взятые резервы в обратном порядке.
// Ошибки возврата логируются: частично восстановленный откат лучше, чем
// прерванный.
func (m *Manager) rollbackReservations(ctx context.Context, reserved []reservedItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		item := reserved[i]
		if _, err := m.ledger.Restore(ctx, item.productID, item.qty); err != nil {
			m.logger.WithError(err).WithFields(log.Fields{
				"product_id": item.productID,
				"qty":        item.qty,
			}).Error("rollback of reservation failed")
		}
	}
}

// restoreItems возвращает сток по каждой позиции заказа. Ошибка по отдельной
// позиции (например, товар удалён из каталога после продажи) логируется и не
// прерывает обработку остальных позиций.
func (m *Manager) restoreItems(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if _, err := m.ledger.Restore(ctx, item.ProductID, item.Qty); err != nil {
			m.logger.WithError(err).WithFields(log.Fields{
				"order_id":   order.ID,
				"product_id": item.ProductID,
				"qty":        item.Qty,
			}).Warn("stock restore failed for order item")
		}
	}
}

// saveWithRetry сохраняет заказ, повторяя попытку при конфликте версий с
// exponential backoff. После перезагрузки свежей версии изменяемые поля
// применяются заново; если конкурирующая запись уже привела заказ к нужному
// статусу, повторное сохранение не выполняется.
func (m *Manager) saveWithRetry(ctx context.Context, order *domain.Order) error {
	const maxRetries = 3
	const baseDelay = 10 * time.Millisecond

	targetStatus := order.Status
	targetPayment := order.PaymentStatus

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := m.orders.Save(ctx, *order)
		if err == nil {
			order.Version++
			return nil
		}
		if !domain.IsVersionConflict(err) || attempt == maxRetries-1 {
			m.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt + 1,
			}).Error("failed to persist order")
			return err
		}

		m.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"attempt":  attempt + 1,
			"version":  order.Version,
		}).Warn("version conflict detected, retrying")

		fresh, loadErr := m.orders.Get(ctx, order.ID)
		if loadErr != nil {
			m.logger.WithError(loadErr).WithField("order_id", order.ID).Error("failed to reload order after conflict")
			return loadErr
		}
		if fresh.Status == targetStatus && fresh.PaymentStatus == targetPayment {
			*order = fresh
			return nil
		}

		fresh.Status = targetStatus
		fresh.PaymentStatus = targetPayment
		fresh.UpdatedAt = m.clock.Now().UTC()
		*order = fresh

		time.Sleep(baseDelay * time.Duration(1<<uint(attempt)))
	}

	return domain.ErrOrderVersionConflict
}

func (m *Manager) appendHistory(ctx context.Context, event domain.StatusHistoryEvent) {
	if m.history == nil {
		return
	}
	if err := m.history.Append(ctx, event); err != nil {
		m.logger.WithError(err).WithFields(log.Fields{
			"order_id": event.OrderID,
			"to":       event.To,
		}).Warn("append status history failed")
	} else if m.metrics != nil {
		m.metrics.RecordHistoryEvent()
	}
}

// publishOrderEvent публикует событие заказа в Kafka (если producer настроен).
func (m *Manager) publishOrderEvent(eventType kafka.EventType, order *domain.Order, metadata map[string]interface{}) {
	if m.producer == nil {
		return
	}

	event := kafka.NewOrderEvent(eventType, order.ID, order.Number, string(order.Status), metadata)
	if err := m.producer.PublishEvent(kafka.TopicOrderEvents, order.ID, event); err != nil {
		// Kafka опциональна: ошибка публикации не прерывает операцию.
		m.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Warn("failed to publish order event to kafka")
	}
}
