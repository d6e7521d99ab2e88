package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/infra/taskqueue"
	"github.com/medimind/reminder-dispatch/internal/observability/metrics"
	"github.com/medimind/reminder-dispatch/internal/observability/tracing"
)

// Submission time layouts accepted from clients. The first matches the
// value of an HTML datetime-local input.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Request carries a reminder submission for a resolved user.
type Request struct {
	UserID       string
	Name         string
	Medicine     string
	ReminderTime string
	FCMToken     string
}

// Confirmation reports a scheduled reminder. ScheduledFor is in UTC.
type Confirmation struct {
	ReminderID   string
	Name         string
	Medicine     string
	ScheduledFor time.Time
}

type Service struct {
	reminderRepo    domain.ReminderRepository
	taskQueue       taskqueue.TaskQueue
	location        *time.Location
	reminderMetrics *metrics.ReminderMetrics
	now             func() time.Time
}

func NewService(
	reminderRepo domain.ReminderRepository,
	taskQueue taskqueue.TaskQueue,
	location *time.Location,
	reminderMetrics *metrics.ReminderMetrics,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		reminderRepo:    reminderRepo,
		taskQueue:       taskQueue,
		location:        location,
		reminderMetrics: reminderMetrics,
		now:             time.Now,
	}
}

// Schedule validates a submission, persists the reminder, and enqueues the
// delayed delivery task. If enqueueing fails the stored record is deleted
// again so no scheduled record without a task remains.
func (s *Service) Schedule(ctx context.Context, req *Request) (*Confirmation, error) {
	start := time.Now()

	conf, err := s.schedule(ctx, req)

	if s.reminderMetrics != nil {
		s.reminderMetrics.RecordSubmission(ctx, submissionOutcome(err), time.Since(start))
	}

	return conf, err
}

func (s *Service) schedule(ctx context.Context, req *Request) (*Confirmation, error) {
	name := strings.TrimSpace(req.Name)
	medicine := strings.TrimSpace(req.Medicine)
	timeStr := strings.TrimSpace(req.ReminderTime)

	if name == "" || medicine == "" || timeStr == "" {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}

	reminderTime, err := s.parseReminderTime(timeStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time format %q", domain.ErrInvalidInput, timeStr)
	}

	if !reminderTime.After(s.now().UTC()) {
		return nil, fmt.Errorf("%w: reminder time must be in the future", domain.ErrInvalidInput)
	}

	reminder := domain.NewReminder(req.UserID, name, medicine, reminderTime, strings.TrimSpace(req.FCMToken))

	id, err := s.reminderRepo.Create(ctx, reminder)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist reminder",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	dispatchCtx, dispatchSpan := tracing.StartTaskDispatchSpan(ctx, id, reminderTime)
	resp, err := s.taskQueue.RegisterReminder(dispatchCtx, &taskqueue.ReminderTask{
		ReminderID: id,
		UserID:     req.UserID,
		ScheduleAt: reminderTime,
	})
	if err != nil {
		dispatchSpan.RecordError(err)
		dispatchSpan.End()

		// Remove the record again so no scheduled reminder without a
		// matching task remains.
		if delErr := s.reminderRepo.Delete(ctx, id); delErr != nil {
			slog.WarnContext(ctx, "failed to delete reminder after task registration failure",
				slog.String("reminder_id", id),
				slog.String("error", delErr.Error()),
			)
		}

		slog.ErrorContext(ctx, "failed to register reminder task",
			slog.String("reminder_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
	}
	dispatchSpan.End()

	slog.InfoContext(ctx, "reminder scheduled",
		slog.String("reminder_id", id),
		slog.String("user_id", req.UserID),
		slog.Time("scheduled_for", reminderTime),
		slog.String("task_name", resp.Name),
	)

	return &Confirmation{
		ReminderID:   id,
		Name:         name,
		Medicine:     medicine,
		ScheduledFor: reminderTime,
	}, nil
}

// Cancel removes a scheduled reminder and its pending task. Reminders of
// other users are reported as not found.
func (s *Service) Cancel(ctx context.Context, userID, reminderID string) error {
	err := s.cancel(ctx, userID, reminderID)

	if s.reminderMetrics != nil {
		s.reminderMetrics.RecordCancellation(ctx, cancellationOutcome(err))
	}

	return err
}

func (s *Service) cancel(ctx context.Context, userID, reminderID string) error {
	if strings.TrimSpace(reminderID) == "" {
		return fmt.Errorf("%w: reminder id is required", domain.ErrInvalidInput)
	}

	reminder, err := s.reminderRepo.Get(ctx, reminderID)
	if err != nil {
		return err
	}
	if reminder.UserID != userID {
		return domain.ErrReminderNotFound
	}
	if !reminder.Cancelable() {
		return domain.ErrNotCancelable
	}

	if err := s.taskQueue.DeleteTask(ctx, reminderID); err != nil {
		slog.ErrorContext(ctx, "failed to delete reminder task",
			slog.String("reminder_id", reminderID),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := s.reminderRepo.Delete(ctx, reminderID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "reminder cancelled",
		slog.String("reminder_id", reminderID),
		slog.String("user_id", userID),
	)

	return nil
}

// List returns all reminders of the given user ordered by reminder time.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.Reminder, error) {
	return s.reminderRepo.ListByUser(ctx, userID)
}

func (s *Service) parseReminderTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.ParseInLocation(layout, value, s.location)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "scheduled"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrDispatchFailed):
		return "dispatch_error"
	default:
		return "store_error"
	}
}

func cancellationOutcome(err error) string {
	switch {
	case err == nil:
		return "cancelled"
	case errors.Is(err, domain.ErrReminderNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotCancelable):
		return "not_cancelable"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
