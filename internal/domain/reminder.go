package domain

import (
	"time"
)

// Status is the delivery lifecycle of a reminder. Transitions are
// monotonic: scheduled -> processing -> completed or failed.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ClaimResult reports the outcome of a transactional attempt to take
// ownership of a reminder for delivery.
type ClaimResult int

const (
	// ClaimGranted means the record transitioned to processing and the
	// caller owns the delivery attempt.
	ClaimGranted ClaimResult = iota
	// ClaimAlreadyCompleted means the record was delivered earlier.
	ClaimAlreadyCompleted
	// ClaimInFlight means another invocation holds the record.
	ClaimInFlight
)

type Reminder struct {
	ID           string    `firestore:"-"`
	UserID       string    `firestore:"user_id"`
	Name         string    `firestore:"name"`
	Medicine     string    `firestore:"medicine"`
	ReminderTime time.Time `firestore:"reminder_time"`
	Status       Status    `firestore:"status"`
	FCMToken     string    `firestore:"fcm_token,omitempty"`
	CreatedAt    time.Time `firestore:"created_at,serverTimestamp"`
	DeliveredAt  time.Time `firestore:"delivered_at,omitempty"`
	MessageID    string    `firestore:"message_id,omitempty"`
	LastError    string    `firestore:"last_error,omitempty"`
}

func NewReminder(userID, name, medicine string, reminderTime time.Time, fcmToken string) *Reminder {
	return &Reminder{
		UserID:       userID,
		Name:         name,
		Medicine:     medicine,
		ReminderTime: reminderTime.UTC(),
		Status:       StatusScheduled,
		FCMToken:     fcmToken,
	}
}

// Cancelable reports whether the reminder can still be withdrawn.
// Only records the dispatcher has not begun delivering qualify.
func (r *Reminder) Cancelable() bool {
	return r.Status == StatusScheduled
}
