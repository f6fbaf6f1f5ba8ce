package domain

import "errors"

var (
	// ErrItemsRequired — заказ должен содержать хотя бы одну позицию.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrItemQtyInvalid — количество в позиции должно быть строго положительным.
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// ErrItemPriceInvalid — цена позиции не может быть отрицательной.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrItemTotalMismatch — итог позиции не равен qty * unit price.
	ErrItemTotalMismatch = errors.New("item total does not match qty * unit price")
	// ErrSubtotalMismatch — subtotal заказа не равен сумме позиций.
	ErrSubtotalMismatch = errors.New("order subtotal does not match items sum")
	// ErrAmountMismatch — total заказа не равен subtotal + tax - discount.
	ErrAmountMismatch = errors.New("order total does not match subtotal + tax - discount")
	// ErrAmountNegative — налог и скидка не могут быть отрицательными.
	ErrAmountNegative = errors.New("tax and discount must be non-negative")
	// ErrOrderNumberRequired — у сохраняемого заказа должен быть номер.
	ErrOrderNumberRequired = errors.New("order number is required")
	// ErrOrderNumberConflict — номер заказа уже присвоен другому заказу.
	ErrOrderNumberConflict = errors.New("order number already taken")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists — заказ с таким ID уже сохранён.
	ErrOrderExists = errors.New("order already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrInvalidTransition — запрошенный переход статуса недопустим.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrStatusInvalid — неизвестный статус заказа.
	ErrStatusInvalid = errors.New("unknown order status")
	// ErrPaymentStatusInvalid — неизвестный статус оплаты.
	ErrPaymentStatusInvalid = errors.New("unknown payment status")
	// ErrPaymentMethodInvalid — неизвестный способ оплаты.
	ErrPaymentMethodInvalid = errors.New("unknown payment method")

	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists — товар с таким ID или SKU уже есть в каталоге.
	ErrProductExists = errors.New("product already exists")
	// ErrProductSKURequired — у товара должен быть SKU.
	ErrProductSKURequired = errors.New("product sku is required")
	// ErrProductNameRequired — у товара должно быть название.
	ErrProductNameRequired = errors.New("product name is required")

	// ErrInsufficientStock — запрошенное количество превышает остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrQtyInvalid — количество в операции со стоком должно быть > 0.
	ErrQtyInvalid = errors.New("qty must be greater than zero")
	// ErrQuantityNegative — остаток товара не может быть отрицательным.
	ErrQuantityNegative = errors.New("product quantity must be non-negative")
	// ErrInvalidAdjustment — неизвестное направление ручной корректировки.
	ErrInvalidAdjustment = errors.New("invalid adjustment direction")
)

// IsNotFound проверяет, является ли ошибка отсутствием заказа или товара.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrProductNotFound)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}
