package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в точке продаж.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, но ещё не подтверждён.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён; статус по умолчанию для POS-потока.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing — заказ собирается.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; сток по позициям возвращён на склад.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusRefunded — по заказу оформлен возврат средств.
	OrderStatusRefunded OrderStatus = "refunded"
)

// PaymentStatus отражает состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod — способ оплаты, зафиксированный при создании заказа.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// DefaultCustomerName подставляется, когда кассир не указал покупателя.
const DefaultCustomerName = "Walk-in Customer"

// Customer — снимок данных покупателя без ссылочной целостности.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// OrderItem представляет одну позицию заказа. Поля ProductName, SKU и
// UnitPriceMinor — снимок товара на момент продажи: последующие изменения
// каталога не затрагивают исторические заказы.
type OrderItem struct {
	ID string
	// ProductID — слабая ссылка на товар: связь без владения.
	ProductID   string
	ProductName string
	SKU         string
	// Qty — количество единиц товара, строго положительное.
	Qty int32
	// UnitPriceMinor — цена за единицу в минимальных денежных единицах.
	UnitPriceMinor int64
	// TotalPriceMinor = UnitPriceMinor * Qty.
	TotalPriceMinor int64
}

// Order агрегирует позиции и состояние заказа. Позиции неизменяемы после
// создания; порядок позиций совпадает с порядком во входном запросе.
type Order struct {
	ID string
	// Number — человекочитаемый номер вида ORD-YYMMDD-NNNN, уникален и
	// неизменяем после присвоения.
	Number        string
	Items         []OrderItem
	SubtotalMinor int64
	TaxMinor      int64
	DiscountMinor int64
	// TotalMinor = SubtotalMinor + TaxMinor - DiscountMinor.
	TotalMinor    int64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Customer      Customer
	Notes         string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal сообщает, находится ли статус среди конечных. Оба конечных
// статуса означают, что сток по позициям уже возвращён или будет возвращён.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// statusRank задаёт порядок прямой цепочки статусов; конечные статусы в
// цепочку не входят.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// CanTransition проверяет допустимость перехода статуса: из конечного статуса
// выхода нет, отмена и возврат доступны из любого неконечного состояния,
// прямая цепочка движется только вперёд.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next.IsTerminal() {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// ValidOrderStatus сообщает, известен ли статус доменной модели.
func ValidOrderStatus(s OrderStatus) bool {
	if s.IsTerminal() {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// ValidPaymentStatus сообщает, известен ли статус оплаты.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ValidPaymentMethod сообщает, известен ли способ оплаты.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// ValidateInvariants проверяет арифметические инварианты заказа и возвращает
// список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.Number == "" {
		errs = append(errs, ErrOrderNumberRequired)
	}
	if o.TaxMinor < 0 || o.DiscountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем subtotal с суммой позиций: qty * unit price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.TotalPriceMinor != int64(item.Qty)*item.UnitPriceMinor {
			errs = append(errs, ErrItemTotalMismatch)
		}
		calc += item.TotalPriceMinor
	}
	if calc != o.SubtotalMinor {
		errs = append(errs, ErrSubtotalMismatch)
	}
	if o.TotalMinor != o.SubtotalMinor+o.TaxMinor-o.DiscountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// ReservedQty возвращает суммарное количество единиц товара, удерживаемое
// заказом из стока, пока заказ не в конечном статусе.
func (o *Order) ReservedQty() int32 {
	var total int32
	for _, item := range o.Items {
		total += item.Qty
	}
	return total
}
