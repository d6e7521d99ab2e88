package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/identity"
	"github.com/medimind/reminder-dispatch/internal/observability/tracing"
	"github.com/medimind/reminder-dispatch/internal/service/schedule"
)

type ReminderHandler struct {
	scheduleService *schedule.Service
	location        *time.Location
}

func NewReminderHandler(scheduleService *schedule.Service, location *time.Location) *ReminderHandler {
	if location == nil {
		location = time.UTC
	}
	return &ReminderHandler{
		scheduleService: scheduleService,
		location:        location,
	}
}

type submitRequest struct {
	Name     string `form:"name" json:"name"`
	Medicine string `form:"medicine" json:"medicine"`
	Time     string `form:"time" json:"time"`
	FCMToken string `form:"fcm_token" json:"fcm_token"`
}

type submitResponse struct {
	ID           string `json:"id"`
	ScheduledFor string `json:"scheduled_for"`
	LocalTime    string `json:"local_time"`
	Message      string `json:"message"`
}

type cancelRequest struct {
	ID string `json:"id"`
}

type cancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type reminderItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Medicine     string `json:"medicine"`
	ReminderTime string `json:"reminder_time"`
	Status       string `json:"status"`
}

// HandleSubmit accepts a reminder submission either as an HTML form post or
// as JSON. Form clients are answered with a redirect carrying a flash
// message, JSON clients with a JSON body.
func (h *ReminderHandler) HandleSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	userID := identity.UserID(c)
	wantsJSON := c.ContentType() == "application/json"

	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.WarnContext(ctx, "submit request binding failed",
			slog.String("error", err.Error()),
		)
		bindErr := fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
		if wantsJSON {
			respondError(c, bindErr)
		} else {
			h.redirectWithFlash(c, flashError(bindErr))
		}
		return
	}

	submitCtx, span := tracing.StartSubmissionSpan(ctx, userID)
	conf, err := h.scheduleService.Schedule(submitCtx, &schedule.Request{
		UserID:       userID,
		Name:         req.Name,
		Medicine:     req.Medicine,
		ReminderTime: req.Time,
		FCMToken:     req.FCMToken,
	})
	if err != nil {
		tracing.RecordSubmissionResult(span, "", time.Time{}, err)
		span.End()

		if wantsJSON {
			respondError(c, err)
		} else {
			h.redirectWithFlash(c, flashError(err))
		}
		return
	}
	tracing.RecordSubmissionResult(span, conf.ReminderID, conf.ScheduledFor, nil)
	span.End()

	localTime := conf.ScheduledFor.In(h.location).Format("2006-01-02 15:04 MST")
	message := fmt.Sprintf("✅ Reminder set for %s at %s!", conf.Name, localTime)

	if wantsJSON {
		c.JSON(http.StatusOK, submitResponse{
			ID:           conf.ReminderID,
			ScheduledFor: conf.ScheduledFor.Format(time.RFC3339),
			LocalTime:    localTime,
			Message:      message,
		})
		return
	}

	h.redirectWithFlash(c, message)
}

// HandleCancel removes a scheduled reminder together with its pending task.
func (h *ReminderHandler) HandleCancel(c *gin.Context) {
	ctx := c.Request.Context()
	userID := identity.UserID(c)

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
		return
	}

	cancelCtx, span := tracing.StartCancellationSpan(ctx, req.ID, userID)
	err := h.scheduleService.Cancel(cancelCtx, userID, req.ID)
	tracing.RecordCancellationResult(span, err)
	span.End()

	if err != nil {
		if !errors.Is(err, domain.ErrReminderNotFound) && !errors.Is(err, domain.ErrNotCancelable) {
			slog.ErrorContext(ctx, "failed to cancel reminder",
				slog.String("reminder_id", req.ID),
				slog.String("error", err.Error()),
			)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelResponse{
		Success: true,
		Message: "reminder cancelled",
	})
}

// HandleList returns the resolved user's reminders ordered by reminder time.
func (h *ReminderHandler) HandleList(c *gin.Context) {
	ctx := c.Request.Context()
	userID := identity.UserID(c)

	reminders, err := h.scheduleService.List(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list reminders",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		respondError(c, err)
		return
	}

	items := make([]reminderItem, 0, len(reminders))
	for _, r := range reminders {
		items = append(items, reminderItem{
			ID:           r.ID,
			Name:         r.Name,
			Medicine:     r.Medicine,
			ReminderTime: r.ReminderTime.Format(time.RFC3339),
			Status:       string(r.Status),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": items,
		"count":     len(items),
	})
}

func (h *ReminderHandler) redirectWithFlash(c *gin.Context, message string) {
	c.Redirect(http.StatusSeeOther, "/?flash="+url.QueryEscape(message))
}

func flashError(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		detail := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
		return "❌ Error: " + detail
	}
	return "❌ Server error. Please try again."
}
