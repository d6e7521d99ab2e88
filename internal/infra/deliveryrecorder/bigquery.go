//go:build gcloud

package deliveryrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/medimind/reminder-dispatch/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt   time.Time `bigquery:"recorded_at"`
	ReminderID   string    `bigquery:"reminder_id"`
	UserID       string    `bigquery:"user_id"`
	Outcome      string    `bigquery:"outcome"`
	MessageID    string    `bigquery:"message_id"`
	Cause        string    `bigquery:"cause"`
	ScheduledFor time.Time `bigquery:"scheduled_for"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.DeliveryRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "delivery result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, delivery result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, delivery result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	table := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable)
	inserter := table.Inserter()

	slog.InfoContext(ctx, "delivery result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordDelivery(ctx context.Context, record domain.DeliveryRecord) error {
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	row := &bigQueryRecord{
		RecordedAt:   recordedAt,
		ReminderID:   record.ReminderID,
		UserID:       record.UserID,
		Outcome:      string(record.Outcome),
		MessageID:    record.MessageID,
		Cause:        record.Cause,
		ScheduledFor: record.ScheduledFor,
	}

	if err := r.inserter.Put(ctx, []*bigQueryRecord{row}); err != nil {
		slog.WarnContext(ctx, "failed to insert delivery result to BigQuery",
			slog.String("error", err.Error()),
			slog.String("reminder_id", record.ReminderID),
			slog.String("outcome", string(record.Outcome)),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
