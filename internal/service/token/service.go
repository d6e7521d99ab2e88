package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/observability/metrics"
)

type Service struct {
	userRepo        domain.UserRepository
	reminderMetrics *metrics.ReminderMetrics
}

func NewService(userRepo domain.UserRepository, reminderMetrics *metrics.ReminderMetrics) *Service {
	return &Service{
		userRepo:        userRepo,
		reminderMetrics: reminderMetrics,
	}
}

// Register appends a device token to the user's token set. Appending an
// already registered token is a no-op.
func (s *Service) Register(ctx context.Context, userID, token string) error {
	err := s.register(ctx, userID, token)

	if s.reminderMetrics != nil {
		s.reminderMetrics.RecordTokenRegistration(ctx, registrationOutcome(err))
	}

	return err
}

func (s *Service) register(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}

	if err := s.userRepo.AppendToken(ctx, userID, token); err != nil {
		slog.ErrorContext(ctx, "failed to save device token",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return err
	}

	slog.InfoContext(ctx, "device token registered",
		slog.String("user_id", userID),
	)

	return nil
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "saved"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
