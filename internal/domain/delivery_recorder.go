package domain

import (
	"context"
	"time"
)

type DeliveryOutcome string

const (
	OutcomeDelivered        DeliveryOutcome = "delivered"
	OutcomeFailed           DeliveryOutcome = "failed"
	OutcomeAlreadyCompleted DeliveryOutcome = "already_completed"
	OutcomeInFlight         DeliveryOutcome = "in_flight"
	OutcomeNoToken          DeliveryOutcome = "no_token"
)

type DeliveryRecord struct {
	ReminderID   string
	UserID       string
	Outcome      DeliveryOutcome
	MessageID    string
	Cause        string
	ScheduledFor time.Time
	RecordedAt   time.Time
}

// DeliveryRecorder sinks per-delivery outcome rows into an analytics
// backend. Implementations must be safe for concurrent use; recording
// failures are logged by callers and never fail the delivery itself.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, record DeliveryRecord) error
	Flush(ctx context.Context) error
	Close() error
}
