package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/medimind/reminder-dispatch/internal/domain"
)

const remindersCollection = "reminders"

type reminderRepository struct {
	client *firestore.Client
}

func NewReminderRepository(client *firestore.Client) domain.ReminderRepository {
	return &reminderRepository{
		client: client,
	}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) (string, error) {
	if reminder == nil {
		return "", ErrInvalidReminderData
	}

	doc := r.client.Collection(remindersCollection).NewDoc()
	if _, err := doc.Create(ctx, reminder); err != nil {
		return "", fmt.Errorf("failed to create reminder document: %w", err)
	}

	return doc.ID, nil
}

func (r *reminderRepository) Get(ctx context.Context, id string) (*domain.Reminder, error) {
	snap, err := r.client.Collection(remindersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to get reminder document: %w", err)
	}

	reminder, err := reminderFromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	return reminder, nil
}

func (r *reminderRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(remindersCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete reminder document: %w", err)
	}
	return nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Reminder, error) {
	iter := r.client.Collection(remindersCollection).
		Where("user_id", "==", userID).
		OrderBy("reminder_time", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	reminders := make([]*domain.Reminder, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reminder documents: %w", err)
		}

		reminder, err := reminderFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

// ClaimProcessing resolves the idempotence guard inside a Firestore
// transaction. Dispatcher delivery is at-least-once, so two callback
// invocations for one reminder can race; only one may win the claim.
func (r *reminderRepository) ClaimProcessing(ctx context.Context, id string) (domain.ClaimResult, error) {
	ref := r.client.Collection(remindersCollection).Doc(id)

	result := domain.ClaimGranted
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var reminder domain.Reminder
		if err := snap.DataTo(&reminder); err != nil {
			return ErrInvalidReminderData
		}

		switch reminder.Status {
		case domain.StatusCompleted:
			result = domain.ClaimAlreadyCompleted
			return nil
		case domain.StatusProcessing:
			result = domain.ClaimInFlight
			return nil
		}

		result = domain.ClaimGranted
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: domain.StatusProcessing},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, domain.ErrReminderNotFound
		}
		return 0, fmt.Errorf("failed to claim reminder %s: %w", id, err)
	}

	return result, nil
}

func (r *reminderRepository) MarkCompleted(ctx context.Context, id, messageID string) error {
	_, err := r.client.Collection(remindersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.StatusCompleted},
		{Path: "message_id", Value: messageID},
		{Path: "delivered_at", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrReminderNotFound
		}
		return fmt.Errorf("failed to mark reminder %s completed: %w", id, err)
	}
	return nil
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id, cause string) error {
	_, err := r.client.Collection(remindersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: domain.StatusFailed},
		{Path: "last_error", Value: cause},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrReminderNotFound
		}
		return fmt.Errorf("failed to mark reminder %s failed: %w", id, err)
	}
	return nil
}

func reminderFromSnapshot(snap *firestore.DocumentSnapshot) (*domain.Reminder, error) {
	var reminder domain.Reminder
	if err := snap.DataTo(&reminder); err != nil {
		return nil, ErrInvalidReminderData
	}
	reminder.ID = snap.Ref.ID
	return &reminder, nil
}
