package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const reminderTracerName = "github.com/medimind/reminder-dispatch/internal/service"

func ReminderTracer() trace.Tracer {
	return otel.Tracer(reminderTracerName)
}

func StartSubmissionSpan(ctx context.Context, userID string) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.submission",
		trace.WithAttributes(
			attribute.String("user_id", userID),
		),
	)
}

func StartDeliverySpan(ctx context.Context, reminderID string) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.delivery",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
		),
	)
}

func StartCancellationSpan(ctx context.Context, reminderID, userID string) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.cancellation",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
			attribute.String("user_id", userID),
		),
	)
}

func StartTaskDispatchSpan(ctx context.Context, reminderID string, scheduleAt time.Time) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.task_dispatch",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
			attribute.String("schedule_at", scheduleAt.Format(time.RFC3339)),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartPushSendSpan(ctx context.Context, reminderID string) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.push_send",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordSubmissionResult(span trace.Span, reminderID string, scheduledFor time.Time, err error) {
	if reminderID != "" {
		span.SetAttributes(attribute.String("reminder_id", reminderID))
	}
	if !scheduledFor.IsZero() {
		span.SetAttributes(attribute.String("scheduled_for", scheduledFor.Format(time.RFC3339)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordDeliveryResult(span trace.Span, outcome string, err error) {
	if outcome != "" {
		span.SetAttributes(attribute.String("delivery.outcome", outcome))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordCancellationResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
