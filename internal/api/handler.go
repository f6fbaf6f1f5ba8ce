package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/lifecycle"
)

// Handler — тонкий HTTP-слой над движком: разбор запросов и перевод доменных
// ошибок в коды ответов, без бизнес-логики.
type Handler struct {
	lifecycle *lifecycle.Manager
	ledger    *ledger.Ledger
	logger    *log.Entry
}

// NewHandler создаёт HTTP-обработчики движка.
func NewHandler(manager *lifecycle.Manager, stock *ledger.Ledger, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "api")
	}
	return &Handler{
		lifecycle: manager,
		ledger:    stock,
		logger:    logger,
	}
}

// Register вешает маршруты движка на роутер.
func (h *Handler) Register(router gin.IRouter) {
	v1 := router.Group("/api/v1")

	orders := v1.Group("/orders")
	orders.POST("", h.createOrder)
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.GET("/:id/history", h.getOrderHistory)
	orders.PATCH("/:id/status", h.updateOrderStatus)
	orders.DELETE("/:id", h.deleteOrder)

	inventory := v1.Group("/inventory")
	inventory.POST("/:id/adjust", h.adjustStock)
	inventory.GET("/low-stock", h.lowStock)
	inventory.GET("/stats", h.inventoryStats)
}

// NewRouter собирает gin-роутер с подключёнными маршрутами движка.
func NewRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.Register(router)
	return router
}

func (h *Handler) createOrder(c *gin.Context) {
	var payload createOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	order, err := h.lifecycle.Create(c.Request.Context(), payload.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listOrders(c *gin.Context) {
	filter, err := parseOrderFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	orders, err := h.lifecycle.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": toOrderListResponse(orders)})
}

func (h *Handler) getOrderHistory(c *gin.Context) {
	events, err := h.lifecycle.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": toHistoryResponse(events)})
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var payload updateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if payload.Status == "" && payload.PaymentStatus == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "status or payment_status is required"})
		return
	}

	order, err := h.lifecycle.Transition(
		c.Request.Context(),
		c.Param("id"),
		domain.OrderStatus(payload.Status),
		domain.PaymentStatus(payload.PaymentStatus),
		payload.Reason,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) deleteOrder(c *gin.Context) {
	if err := h.lifecycle.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) adjustStock(c *gin.Context) {
	var payload adjustStockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	quantity, err := h.ledger.Adjust(
		c.Request.Context(),
		c.Param("id"),
		payload.Qty,
		domain.AdjustDirection(payload.Direction),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, adjustResponse{ProductID: c.Param("id"), Quantity: quantity})
}

func (h *Handler) lowStock(c *gin.Context) {
	report, err := h.ledger.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLowStockResponse(report))
}

func (h *Handler) inventoryStats(c *gin.Context) {
	stats, err := h.ledger.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		TotalProducts:   stats.TotalProducts,
		TotalQuantity:   stats.TotalQuantity,
		TotalValueMinor: stats.TotalValueMinor,
		LowStockCount:   stats.LowStockCount,
		OutOfStockCount: stats.OutOfStockCount,
	})
}

func parseOrderFilter(c *gin.Context) (domain.OrderFilter, error) {
	var filter domain.OrderFilter

	filter.Status = domain.OrderStatus(c.Query("status"))

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.OrderFilter{}, err
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.OrderFilter{}, err
		}
		filter.To = to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.OrderFilter{}, err
		}
		filter.Limit = limit
	}

	return filter, nil
}
