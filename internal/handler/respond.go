package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medimind/reminder-dispatch/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError translates a service error into a JSON error response.
// Domain sentinels are mapped to HTTP statuses exactly once, here.
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), errorResponse{
		Error:   errorType(err),
		Message: err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoDeviceToken),
		errors.Is(err, domain.ErrInvalidDeviceToken),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReminderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotCancelable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation_error"
	case errors.Is(err, domain.ErrNoDeviceToken),
		errors.Is(err, domain.ErrInvalidDeviceToken),
		errors.Is(err, domain.ErrUserNotFound):
		return "config_error"
	case errors.Is(err, domain.ErrReminderNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotCancelable):
		return "conflict"
	case errors.Is(err, domain.ErrDispatchFailed):
		return "dispatch_error"
	case errors.Is(err, domain.ErrDeliveryFailed):
		return "delivery_error"
	default:
		return "internal_error"
	}
}
