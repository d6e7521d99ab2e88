package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/infra/push"
	"github.com/medimind/reminder-dispatch/internal/observability/metrics"
	"github.com/medimind/reminder-dispatch/internal/observability/tracing"
)

const (
	notificationTitle = "Medication Reminder"

	// Tokens shorter than this cannot be real FCM registration tokens.
	minTokenLength = 50
)

// Result reports the outcome of a delivery attempt.
type Result struct {
	Outcome   domain.DeliveryOutcome
	MessageID string
}

type Service struct {
	reminderRepo    domain.ReminderRepository
	userRepo        domain.UserRepository
	sender          push.Sender
	recorder        domain.DeliveryRecorder
	reminderMetrics *metrics.ReminderMetrics
}

func NewService(
	reminderRepo domain.ReminderRepository,
	userRepo domain.UserRepository,
	sender push.Sender,
	recorder domain.DeliveryRecorder,
	reminderMetrics *metrics.ReminderMetrics,
) *Service {
	return &Service{
		reminderRepo:    reminderRepo,
		userRepo:        userRepo,
		sender:          sender,
		recorder:        recorder,
		reminderMetrics: reminderMetrics,
	}
}

// Deliver processes a scheduled callback for the given reminder. The record
// is claimed through a transactional status transition, so concurrent
// callbacks for the same reminder result in at most one push send.
func (s *Service) Deliver(ctx context.Context, reminderID string) (*Result, error) {
	start := time.Now()

	result, err := s.deliver(ctx, reminderID)

	outcome := "error"
	if result != nil {
		outcome = string(result.Outcome)
	}
	if s.reminderMetrics != nil {
		s.reminderMetrics.RecordDelivery(ctx, outcome, time.Since(start))
	}

	return result, err
}

func (s *Service) deliver(ctx context.Context, reminderID string) (*Result, error) {
	if reminderID == "" {
		return nil, fmt.Errorf("%w: reminder id is required", domain.ErrInvalidInput)
	}

	reminder, err := s.reminderRepo.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}

	claim, err := s.reminderRepo.ClaimProcessing(ctx, reminderID)
	if err != nil {
		return nil, err
	}

	switch claim {
	case domain.ClaimAlreadyCompleted:
		slog.InfoContext(ctx, "reminder already completed, skipping send",
			slog.String("reminder_id", reminderID),
		)
		s.record(ctx, reminder, domain.OutcomeAlreadyCompleted, "", "")
		return &Result{Outcome: domain.OutcomeAlreadyCompleted}, nil
	case domain.ClaimInFlight:
		slog.InfoContext(ctx, "reminder delivery already in flight, skipping send",
			slog.String("reminder_id", reminderID),
		)
		s.record(ctx, reminder, domain.OutcomeInFlight, "", "")
		return &Result{Outcome: domain.OutcomeInFlight}, nil
	}

	token, err := s.resolveToken(ctx, reminder)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve device token",
			slog.String("reminder_id", reminderID),
			slog.String("user_id", reminder.UserID),
			slog.String("error", err.Error()),
		)
		s.markFailed(ctx, reminderID, err.Error())
		s.record(ctx, reminder, domain.OutcomeNoToken, "", err.Error())
		return nil, err
	}

	sendCtx, sendSpan := tracing.StartPushSendSpan(ctx, reminderID)
	messageID, err := s.sender.Send(sendCtx, &push.Notification{
		Token: token,
		Title: notificationTitle,
		Body:  fmt.Sprintf("Time to take %s!", reminder.Medicine),
		Data: map[string]string{
			"reminder_id": reminderID,
		},
	})
	if err != nil {
		sendSpan.RecordError(err)
		sendSpan.End()

		slog.ErrorContext(ctx, "failed to send push notification",
			slog.String("reminder_id", reminderID),
			slog.String("user_id", reminder.UserID),
			slog.String("error", err.Error()),
		)
		s.markFailed(ctx, reminderID, err.Error())
		s.record(ctx, reminder, domain.OutcomeFailed, "", err.Error())
		return nil, fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	sendSpan.End()

	if err := s.reminderRepo.MarkCompleted(ctx, reminderID, messageID); err != nil {
		slog.ErrorContext(ctx, "failed to mark reminder completed after send",
			slog.String("reminder_id", reminderID),
			slog.String("message_id", messageID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	slog.InfoContext(ctx, "reminder delivered",
		slog.String("reminder_id", reminderID),
		slog.String("user_id", reminder.UserID),
		slog.String("message_id", messageID),
	)
	s.record(ctx, reminder, domain.OutcomeDelivered, messageID, "")

	return &Result{Outcome: domain.OutcomeDelivered, MessageID: messageID}, nil
}

// resolveToken prefers the token stored on the reminder itself and falls
// back to the first token registered for the owning user.
func (s *Service) resolveToken(ctx context.Context, reminder *domain.Reminder) (string, error) {
	token := reminder.FCMToken

	if token == "" {
		user, err := s.userRepo.Get(ctx, reminder.UserID)
		if err != nil {
			return "", err
		}
		token = user.PrimaryToken()
	}

	if token == "" {
		return "", domain.ErrNoDeviceToken
	}
	if len(token) < minTokenLength {
		return "", domain.ErrInvalidDeviceToken
	}

	return token, nil
}

func (s *Service) markFailed(ctx context.Context, reminderID, cause string) {
	if err := s.reminderRepo.MarkFailed(ctx, reminderID, cause); err != nil {
		slog.WarnContext(ctx, "failed to mark reminder failed",
			slog.String("reminder_id", reminderID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) record(ctx context.Context, reminder *domain.Reminder, outcome domain.DeliveryOutcome, messageID, cause string) {
	if s.recorder == nil {
		return
	}

	err := s.recorder.RecordDelivery(ctx, domain.DeliveryRecord{
		ReminderID:   reminder.ID,
		UserID:       reminder.UserID,
		Outcome:      outcome,
		MessageID:    messageID,
		Cause:        cause,
		ScheduledFor: reminder.ReminderTime,
		RecordedAt:   time.Now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record delivery result",
			slog.String("reminder_id", reminder.ID),
			slog.String("error", err.Error()),
		)
	}
}
