package api

import (
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/lifecycle"
)

// createOrderRequest — тело POST /api/v1/orders.
type createOrderRequest struct {
	Items         []createOrderItem `json:"items"`
	TaxMinor      int64             `json:"tax_minor"`
	DiscountMinor int64             `json:"discount_minor"`
	Customer      customerPayload   `json:"customer"`
	Notes         string            `json:"notes"`
	PaymentMethod string            `json:"payment_method"`
}

type createOrderItem struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
	// UnitPriceMinor фиксирует цену позиции вместо цены каталога, если задан.
	UnitPriceMinor *int64 `json:"unit_price_minor,omitempty"`
}

type customerPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (r createOrderRequest) toDomain() lifecycle.CreateOrderRequest {
	items := make([]lifecycle.CreateItemRequest, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, lifecycle.CreateItemRequest{
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}
	return lifecycle.CreateOrderRequest{
		Items:         items,
		TaxMinor:      r.TaxMinor,
		DiscountMinor: r.DiscountMinor,
		Customer: domain.Customer{
			Name:    r.Customer.Name,
			Email:   r.Customer.Email,
			Phone:   r.Customer.Phone,
			Address: r.Customer.Address,
		},
		Notes:         r.Notes,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
	}
}

// updateStatusRequest — тело PATCH /api/v1/orders/:id/status.
type updateStatusRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Reason        string `json:"reason"`
}

// adjustStockRequest — тело POST /api/v1/inventory/:id/adjust.
type adjustStockRequest struct {
	Qty       int32  `json:"qty"`
	Direction string `json:"direction"`
}

type orderItemResponse struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	SKU             string `json:"sku"`
	Qty             int32  `json:"qty"`
	UnitPriceMinor  int64  `json:"unit_price_minor"`
	TotalPriceMinor int64  `json:"total_price_minor"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Items         []orderItemResponse `json:"items"`
	SubtotalMinor int64               `json:"subtotal_minor"`
	TaxMinor      int64               `json:"tax_minor"`
	DiscountMinor int64               `json:"discount_minor"`
	TotalMinor    int64               `json:"total_minor"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod string              `json:"payment_method"`
	Customer      customerPayload     `json:"customer"`
	Notes         string              `json:"notes,omitempty"`
	Version       int64               `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			SKU:             item.SKU,
			Qty:             item.Qty,
			UnitPriceMinor:  item.UnitPriceMinor,
			TotalPriceMinor: item.TotalPriceMinor,
		})
	}
	return orderResponse{
		ID:            order.ID,
		Number:        order.Number,
		Items:         items,
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		DiscountMinor: order.DiscountMinor,
		TotalMinor:    order.TotalMinor,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: string(order.PaymentMethod),
		Customer: customerPayload{
			Name:    order.Customer.Name,
			Email:   order.Customer.Email,
			Phone:   order.Customer.Phone,
			Address: order.Customer.Address,
		},
		Notes:     order.Notes,
		Version:   order.Version,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func toOrderListResponse(orders []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	return result
}

type historyEventResponse struct {
	OrderID  string    `json:"order_id"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toHistoryResponse(events []domain.StatusHistoryEvent) []historyEventResponse {
	result := make([]historyEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, historyEventResponse{
			OrderID:  event.OrderID,
			From:     string(event.From),
			To:       string(event.To),
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	return result
}

type productResponse struct {
	ID                string `json:"id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Quantity          int32  `json:"quantity"`
	LowStockThreshold int32  `json:"low_stock_threshold"`
	StockStatus       string `json:"stock_status"`
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:                product.ID,
		SKU:               product.SKU,
		Name:              product.Name,
		Quantity:          product.Quantity,
		LowStockThreshold: product.LowStockThreshold,
		StockStatus:       string(product.StockStatus()),
	}
}

type lowStockResponse struct {
	LowStock   []productResponse `json:"low_stock"`
	OutOfStock []productResponse `json:"out_of_stock"`
}

func toLowStockResponse(report ledger.LowStockReport) lowStockResponse {
	result := lowStockResponse{
		LowStock:   make([]productResponse, 0, len(report.LowStock)),
		OutOfStock: make([]productResponse, 0, len(report.OutOfStock)),
	}
	for _, product := range report.LowStock {
		result.LowStock = append(result.LowStock, toProductResponse(product))
	}
	for _, product := range report.OutOfStock {
		result.OutOfStock = append(result.OutOfStock, toProductResponse(product))
	}
	return result
}

type statsResponse struct {
	TotalProducts   int   `json:"total_products"`
	TotalQuantity   int64 `json:"total_quantity"`
	TotalValueMinor int64 `json:"total_value_minor"`
	LowStockCount   int   `json:"low_stock_count"`
	OutOfStockCount int   `json:"out_of_stock_count"`
}

type adjustResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}
