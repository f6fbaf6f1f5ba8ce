package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// httpStatusForError сводит доменные ошибки к HTTP-кодам: отсутствие — 404,
// конфликты состояния и стока — 409, ошибки валидации — 400, прочее — 500.
func httpStatusForError(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsInsufficientStock(err),
		domain.IsVersionConflict(err),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderNumberConflict),
		errors.Is(err, domain.ErrOrderExists),
		errors.Is(err, domain.ErrProductExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrItemPriceInvalid),
		errors.Is(err, domain.ErrQtyInvalid),
		errors.Is(err, domain.ErrAmountNegative),
		errors.Is(err, domain.ErrInvalidAdjustment),
		errors.Is(err, domain.ErrStatusInvalid),
		errors.Is(err, domain.ErrPaymentStatusInvalid),
		errors.Is(err, domain.ErrPaymentMethodInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := httpStatusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, errorResponse{Error: message})
}
