package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/observability/tracing"
	"github.com/medimind/reminder-dispatch/internal/service/delivery"
)

type CallbackHandler struct {
	deliveryService *delivery.Service
}

func NewCallbackHandler(deliveryService *delivery.Service) *CallbackHandler {
	return &CallbackHandler{
		deliveryService: deliveryService,
	}
}

// HandleSendReminder processes the scheduled Cloud Tasks callback. The task
// body carries the raw reminder document ID as plain text.
func (h *CallbackHandler) HandleSendReminder(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read callback body",
			slog.String("error", err.Error()),
		)
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	reminderID := strings.TrimSpace(string(body))
	if reminderID == "" {
		c.String(http.StatusNotFound, "Document not found")
		return
	}

	deliverCtx, span := tracing.StartDeliverySpan(ctx, reminderID)
	result, err := h.deliveryService.Deliver(deliverCtx, reminderID)
	if err != nil {
		tracing.RecordDeliveryResult(span, "", err)
		span.End()
		h.respondDeliveryError(c, reminderID, err)
		return
	}
	tracing.RecordDeliveryResult(span, string(result.Outcome), nil)
	span.End()

	switch result.Outcome {
	case domain.OutcomeAlreadyCompleted:
		c.String(http.StatusOK, "Already processed")
	case domain.OutcomeInFlight:
		c.String(http.StatusOK, "Delivery in flight")
	default:
		c.String(http.StatusOK, "Success")
	}
}

func (h *CallbackHandler) respondDeliveryError(c *gin.Context, reminderID string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, domain.ErrReminderNotFound):
		slog.WarnContext(ctx, "callback for unknown reminder",
			slog.String("reminder_id", reminderID),
		)
		c.String(http.StatusNotFound, "Document not found")
	case errors.Is(err, domain.ErrInvalidDeviceToken):
		c.String(http.StatusBadRequest, "Invalid FCM token")
	case errors.Is(err, domain.ErrNoDeviceToken), errors.Is(err, domain.ErrUserNotFound):
		c.String(http.StatusBadRequest, "Invalid user configuration")
	default:
		slog.ErrorContext(ctx, "reminder delivery failed",
			slog.String("reminder_id", reminderID),
			slog.String("error", err.Error()),
		)
		c.String(http.StatusInternalServerError, "Internal error")
	}
}
