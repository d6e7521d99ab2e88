package domain

import "context"

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=domain

type ReminderRepository interface {
	Create(ctx context.Context, reminder *Reminder) (string, error)
	Get(ctx context.Context, id string) (*Reminder, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*Reminder, error)
	// ClaimProcessing transitions the record to processing inside a
	// store transaction so concurrent dispatcher invocations cannot
	// both win the delivery attempt.
	ClaimProcessing(ctx context.Context, id string) (ClaimResult, error)
	MarkCompleted(ctx context.Context, id string, messageID string) error
	MarkFailed(ctx context.Context, id string, cause string) error
}

type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	// AppendToken adds a device token to the user's token set with
	// set-union semantics, creating the user document if needed.
	AppendToken(ctx context.Context, userID, token string) error
}
