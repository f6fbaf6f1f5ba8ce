package integration

import (
	"context"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/pos/internal/clock"
	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/catalog"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/lifecycle"
	"github.com/vladislavdragonenkov/pos/internal/service/ordernum"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

// OrderLifecycleTestSuite проверяет сквозные сценарии точки продаж:
// продажа, отмена с возвратом стока, удаление.
type OrderLifecycleTestSuite struct {
	suite.Suite
	products domain.ProductRepository
	manager  *lifecycle.Manager
	ledger   *ledger.Ledger
	clock    *clock.Fixed
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.products = memory.NewProductRepository()
	suite.ledger = ledger.NewLedgerWithoutMetrics(suite.products, logger)
	suite.clock = clock.NewFixed(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))

	suite.manager = lifecycle.NewManagerWithoutMetrics(
		memory.NewOrderRepository(),
		memory.NewStatusHistoryRepository(),
		suite.ledger,
		ordernum.NewAllocator(memory.NewCounterRepository()),
		catalog.NewService(suite.products),
		suite.clock,
		logger,
	)
}

func (suite *OrderLifecycleTestSuite) seedProduct(id string, qty int32, priceMinor int64) {
	err := suite.products.Create(context.Background(), domain.Product{
		ID:                id,
		SKU:               "SKU-" + id,
		Name:              "Product " + id,
		PriceMinor:        priceMinor,
		Quantity:          qty,
		LowStockThreshold: 3,
	})
	require.NoError(suite.T(), err)
}

func (suite *OrderLifecycleTestSuite) productQty(id string) int32 {
	product, err := suite.products.Get(context.Background(), id)
	require.NoError(suite.T(), err)
	return product.Quantity
}

// Сценарий: продажа списывает сток, отмена возвращает, последующее удаление
// возвратного стока не дублирует.
func (suite *OrderLifecycleTestSuite) TestSaleCancelDelete() {
	ctx := context.Background()
	suite.seedProduct("espresso", 5, 250)

	order, err := suite.manager.Create(ctx, lifecycle.CreateOrderRequest{
		Items: []lifecycle.CreateItemRequest{{ProductID: "espresso", Qty: 3}},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "ORD-250310-0001", order.Number)
	require.Equal(suite.T(), int32(2), suite.productQty("espresso"))

	cancelled, err := suite.manager.Transition(ctx, order.ID, domain.OrderStatusCancelled, "", "")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), domain.OrderStatusCancelled, cancelled.Status)
	require.Equal(suite.T(), int32(5), suite.productQty("espresso"))

	require.NoError(suite.T(), suite.manager.Delete(ctx, order.ID))
	require.Equal(suite.T(), int32(5), suite.productQty("espresso"))
}

// Сценарий: нехватка стока не оставляет ни заказа, ни частичных списаний.
func (suite *OrderLifecycleTestSuite) TestInsufficientStockLeavesNoTrace() {
	ctx := context.Background()
	suite.seedProduct("latte", 2, 350)
	suite.seedProduct("muffin", 10, 200)

	_, err := suite.manager.Create(ctx, lifecycle.CreateOrderRequest{
		Items: []lifecycle.CreateItemRequest{
			{ProductID: "muffin", Qty: 4},
			{ProductID: "latte", Qty: 3},
		},
	})
	require.ErrorIs(suite.T(), err, domain.ErrInsufficientStock)

	require.Equal(suite.T(), int32(10), suite.productQty("muffin"))
	require.Equal(suite.T(), int32(2), suite.productQty("latte"))

	orders, err := suite.manager.List(ctx, domain.OrderFilter{})
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), orders)
}

// Сценарий: номера заказов растут внутри дня и сбрасываются на границе суток.
func (suite *OrderLifecycleTestSuite) TestOrderNumbersAcrossDays() {
	ctx := context.Background()
	suite.seedProduct("tea", 100, 150)

	first, err := suite.manager.Create(ctx, lifecycle.CreateOrderRequest{
		Items: []lifecycle.CreateItemRequest{{ProductID: "tea", Qty: 1}},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "ORD-250310-0001", first.Number)

	second, err := suite.manager.Create(ctx, lifecycle.CreateOrderRequest{
		Items: []lifecycle.CreateItemRequest{{ProductID: "tea", Qty: 1}},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "ORD-250310-0002", second.Number)

	suite.clock.Advance(24 * time.Hour)

	nextDay, err := suite.manager.Create(ctx, lifecycle.CreateOrderRequest{
		Items: []lifecycle.CreateItemRequest{{ProductID: "tea", Qty: 1}},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "ORD-250311-0001", nextDay.Number)
}

// Сценарий: полный прямой путь статусов с историей переходов.
func (suite *OrderLifecycleTestSuite) TestForwardChainWithHistory() {
	ctx := context.Background()
	suite.seedProduct("sandwich", 5, 500)

	order, err := suite.manager.Create(ctx, lifecycle.CreateOrderRequest{
		Items: []lifecycle.CreateItemRequest{{ProductID: "sandwich", Qty: 1}},
	})
	require.NoError(suite.T(), err)

	chain := []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	}
	for _, status := range chain {
		updated, err := suite.manager.Transition(ctx, order.ID, status, "", "")
		require.NoError(suite.T(), err)
		require.Equal(suite.T(), status, updated.Status)
	}

	// Из delivered в cancelled можно, обратно — нет.
	_, err = suite.manager.Transition(ctx, order.ID, domain.OrderStatusCancelled, "", "end of day void")
	require.NoError(suite.T(), err)
	_, err = suite.manager.Transition(ctx, order.ID, domain.OrderStatusProcessing, "", "")
	require.ErrorIs(suite.T(), err, domain.ErrInvalidTransition)

	events, err := suite.manager.History(ctx, order.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), events, 5) // создание + 3 перехода + отмена
	require.Equal(suite.T(), domain.OrderStatusCancelled, events[4].To)
	require.Equal(suite.T(), "end of day void", events[4].Reason)
	require.Equal(suite.T(), int32(5), suite.productQty("sandwich"))
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
