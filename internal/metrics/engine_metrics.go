package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics содержит метрики движка заказов и склада.
type EngineMetrics struct {
	// Счётчики операций над заказами
	ordersCreated     prometheus.Counter
	ordersCancelled   prometheus.Counter
	ordersDeleted     prometheus.Counter
	orderCreateFailed *prometheus.CounterVec
	orderTransitions  *prometheus.CounterVec
	historyEvents     prometheus.Counter

	// Гистограмма времени создания заказа
	createDuration prometheus.Histogram

	// Счётчики движения стока (в единицах товара)
	stockReservedUnits prometheus.Counter
	stockRestoredUnits prometheus.Counter
	reserveRejected    prometheus.Counter
	restoreFailed      prometheus.Counter
	lowStockEvents     prometheus.Counter
}

// NewEngineMetrics создаёт новый экземпляр метрик движка.
func NewEngineMetrics() *EngineMetrics {
	return newEngineMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newEngineMetricsWithRegisterer(registerer prometheus.Registerer) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &EngineMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		orderCreateFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_order_create_failed_total",
			Help: "Total number of failed order creations by reason",
		}, []string{"reason"}),
		orderTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_order_transitions_total",
			Help: "Total number of order status transitions by target status",
		}, []string{"status"}),
		historyEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_order_history_events_total",
			Help: "Total number of order status history events recorded",
		}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stockReservedUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_stock_reserved_units_total",
			Help: "Total number of stock units reserved for orders",
		}),
		stockRestoredUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_stock_restored_units_total",
			Help: "Total number of stock units restored to the ledger",
		}),
		reserveRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_stock_reserve_rejected_total",
			Help: "Total number of reservations rejected due to insufficient stock",
		}),
		restoreFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_stock_restore_failed_total",
			Help: "Total number of stock restorations that could not be applied",
		}),
		lowStockEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_stock_low_events_total",
			Help: "Total number of low stock conditions observed after a reservation",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *EngineMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *EngineMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *EngineMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordOrderCreateFailed фиксирует неудачное создание заказа с причиной.
func (m *EngineMetrics) RecordOrderCreateFailed(reason string) {
	m.orderCreateFailed.WithLabelValues(reason).Inc()
}

// RecordOrderTransition фиксирует переход заказа в новый статус.
func (m *EngineMetrics) RecordOrderTransition(status string) {
	m.orderTransitions.WithLabelValues(status).Inc()
}

// RecordHistoryEvent увеличивает счётчик событий истории статусов.
func (m *EngineMetrics) RecordHistoryEvent() {
	m.historyEvents.Inc()
}

// RecordCreateDuration записывает время создания заказа.
func (m *EngineMetrics) RecordCreateDuration(duration time.Duration) {
	m.createDuration.Observe(duration.Seconds())
}

// RecordStockReserved увеличивает счётчик зарезервированных единиц.
func (m *EngineMetrics) RecordStockReserved(units int32) {
	m.stockReservedUnits.Add(float64(units))
}

// RecordStockRestored увеличивает счётчик возвращённых единиц.
func (m *EngineMetrics) RecordStockRestored(units int32) {
	m.stockRestoredUnits.Add(float64(units))
}

// RecordReserveRejected фиксирует отказ в резервировании из-за нехватки стока.
func (m *EngineMetrics) RecordReserveRejected() {
	m.reserveRejected.Inc()
}

// RecordRestoreFailed фиксирует невозможность вернуть сток по позиции.
func (m *EngineMetrics) RecordRestoreFailed() {
	m.restoreFailed.Inc()
}

// RecordLowStock фиксирует падение остатка до порога или ниже.
func (m *EngineMetrics) RecordLowStock() {
	m.lowStockEvents.Inc()
}
