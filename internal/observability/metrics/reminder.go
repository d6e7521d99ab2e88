package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	reminderMeterName = "reminder.service"
)

type ReminderMetrics struct {
	remindersSubmitted metric.Int64Counter
	deliveriesTotal    metric.Int64Counter
	cancellationsTotal metric.Int64Counter
	tokenRegistrations metric.Int64Counter
	submissionDuration metric.Float64Histogram
	deliveryDuration   metric.Float64Histogram
}

func NewReminderMetrics() (*ReminderMetrics, error) {
	meter := otel.Meter(reminderMeterName)

	remindersSubmitted, err := meter.Int64Counter(
		"reminders_submitted_total",
		metric.WithDescription("Total number of reminder submissions"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	deliveriesTotal, err := meter.Int64Counter(
		"reminder_deliveries_total",
		metric.WithDescription("Total number of reminder delivery attempts"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, err
	}

	cancellationsTotal, err := meter.Int64Counter(
		"reminder_cancellations_total",
		metric.WithDescription("Total number of reminder cancellations"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	tokenRegistrations, err := meter.Int64Counter(
		"device_token_registrations_total",
		metric.WithDescription("Total number of device token registrations"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, err
	}

	submissionDuration, err := meter.Float64Histogram(
		"reminder_submission_duration_seconds",
		metric.WithDescription("Time spent handling a reminder submission"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
		),
	)
	if err != nil {
		return nil, err
	}

	deliveryDuration, err := meter.Float64Histogram(
		"reminder_delivery_duration_seconds",
		metric.WithDescription("Time spent delivering a reminder notification"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
		),
	)
	if err != nil {
		return nil, err
	}

	return &ReminderMetrics{
		remindersSubmitted: remindersSubmitted,
		deliveriesTotal:    deliveriesTotal,
		cancellationsTotal: cancellationsTotal,
		tokenRegistrations: tokenRegistrations,
		submissionDuration: submissionDuration,
		deliveryDuration:   deliveryDuration,
	}, nil
}

func (m *ReminderMetrics) RecordSubmission(ctx context.Context, outcome string, duration time.Duration) {
	m.remindersSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.submissionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *ReminderMetrics) RecordDelivery(ctx context.Context, outcome string, duration time.Duration) {
	m.deliveriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.deliveryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *ReminderMetrics) RecordCancellation(ctx context.Context, outcome string) {
	m.cancellationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *ReminderMetrics) RecordTokenRegistration(ctx context.Context, outcome string) {
	m.tokenRegistrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
