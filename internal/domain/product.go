package domain

import "time"

// DefaultLowStockThreshold используется, если для товара не задан свой порог.
const DefaultLowStockThreshold = 10

// StockStatus — производное состояние остатка товара.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Product описывает товар каталога. Движок консистентности мутирует только
// поле Quantity; остальные поля принадлежат CRUD-слою каталога.
type Product struct {
	ID   string
	SKU  string
	Name string
	// Barcode — штрихкод для сканера на кассе.
	Barcode     string
	Description string
	PriceMinor  int64
	// Quantity — авторитетный остаток на складе, всегда >= 0.
	Quantity int32
	// LowStockThreshold — порог, ниже которого товар считается заканчивающимся.
	LowStockThreshold int32
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StockStatus классифицирует остаток товара относительно порога.
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Quantity == 0:
		return StockStatusOutOfStock
	case p.Quantity <= p.LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// Validate проверяет ключевые поля товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.SKU == "" {
		errs = append(errs, ErrProductSKURequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrQuantityNegative)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}

	return errs
}

// ProductSnapshot — снимок товара, который Catalog Lookup отдаёт движку.
// Движок читает снимок и никогда не мутирует name/sku/price.
type ProductSnapshot struct {
	ProductID  string
	Name       string
	SKU        string
	PriceMinor int64
	Quantity   int32
}

// InventoryStats — сводка по складу для отчётного эндпоинта.
type InventoryStats struct {
	TotalProducts   int
	TotalQuantity   int64
	TotalValueMinor int64
	LowStockCount   int
	OutOfStockCount int
}
