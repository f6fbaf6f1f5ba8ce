package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		var total float64
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func TestNewEngineMetrics(t *testing.T) {
	m := NewEngineMetrics()

	if m == nil {
		t.Fatal("NewEngineMetrics should not return nil")
	}
	if m.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if m.ordersCancelled == nil {
		t.Error("ordersCancelled counter should not be nil")
	}
	if m.ordersDeleted == nil {
		t.Error("ordersDeleted counter should not be nil")
	}
	if m.orderCreateFailed == nil {
		t.Error("orderCreateFailed counter vec should not be nil")
	}
	if m.createDuration == nil {
		t.Error("createDuration histogram should not be nil")
	}
	if m.stockReservedUnits == nil {
		t.Error("stockReservedUnits counter should not be nil")
	}
	if m.lowStockEvents == nil {
		t.Error("lowStockEvents counter should not be nil")
	}
}

func TestNewEngineMetrics_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newEngineMetricsWithRegisterer(reg)
	second := newEngineMetricsWithRegisterer(reg)

	// Повторная регистрация переиспользует существующие коллекторы.
	first.RecordOrderCreated()
	second.RecordOrderCreated()

	if got := gatherCounterValue(t, reg, "pos_orders_created_total"); got != 2 {
		t.Fatalf("expected counter 2, got %v", got)
	}
}

func TestEngineMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newEngineMetricsWithRegisterer(reg)

	m.RecordStockReserved(5)
	m.RecordStockReserved(3)
	m.RecordStockRestored(5)
	m.RecordReserveRejected()
	m.RecordOrderCreateFailed("insufficient_stock")
	m.RecordOrderTransition("cancelled")
	m.RecordCreateDuration(25 * time.Millisecond)

	if got := gatherCounterValue(t, reg, "pos_stock_reserved_units_total"); got != 8 {
		t.Fatalf("expected 8 reserved units, got %v", got)
	}
	if got := gatherCounterValue(t, reg, "pos_stock_restored_units_total"); got != 5 {
		t.Fatalf("expected 5 restored units, got %v", got)
	}
	if got := gatherCounterValue(t, reg, "pos_stock_reserve_rejected_total"); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := gatherCounterValue(t, reg, "pos_order_create_failed_total"); got != 1 {
		t.Fatalf("expected 1 failed create, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var histogram *dto.MetricFamily
	for _, family := range families {
		if family.GetName() == "pos_order_create_duration_seconds" {
			histogram = family
		}
	}
	if histogram == nil {
		t.Fatal("create duration histogram not gathered")
	}
	if histogram.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected 1 histogram sample")
	}
}
