package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated   EventType = "order.created"
	EventTypeOrderCancelled EventType = "order.cancelled"
	EventTypeOrderDeleted   EventType = "order.deleted"
	EventTypeOrderStatus    EventType = "order.status_changed"

	// Stock события
	EventTypeStockLow      EventType = "stock.low"
	EventTypeStockAdjusted EventType = "stock.adjusted"
)

// Topics для Kafka
const (
	TopicOrderEvents = "pos.order.events"
	TopicStockEvents = "pos.stock.events"
)

// OrderEvent представляет событие жизненного цикла заказа
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Number    string                 `json:"number"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent представляет событие движения остатков
type StockEvent struct {
	EventType EventType              `json:"event_type"`
	ProductID string                 `json:"product_id"`
	SKU       string                 `json:"sku,omitempty"`
	Quantity  int32                  `json:"quantity"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, number, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		Number:    number,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewStockEvent создает новое событие остатков
func NewStockEvent(eventType EventType, productID, sku string, quantity int32, metadata map[string]interface{}) *StockEvent {
	return &StockEvent{
		EventType: eventType,
		ProductID: productID,
		SKU:       sku,
		Quantity:  quantity,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
