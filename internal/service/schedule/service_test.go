package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/infra/taskqueue"
)

func TestSchedule_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	wantTime := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *domain.Reminder) (string, error) {
			if r.UserID != "user-1" {
				t.Errorf("unexpected user_id: got %q, want %q", r.UserID, "user-1")
			}
			if r.Name != "Asha" {
				t.Errorf("unexpected name: got %q, want %q", r.Name, "Asha")
			}
			if r.Medicine != "Metformin" {
				t.Errorf("unexpected medicine: got %q, want %q", r.Medicine, "Metformin")
			}
			if !r.ReminderTime.Equal(wantTime) {
				t.Errorf("unexpected reminder_time: got %v, want %v", r.ReminderTime, wantTime)
			}
			if r.Status != domain.StatusScheduled {
				t.Errorf("unexpected status: got %q, want %q", r.Status, domain.StatusScheduled)
			}
			return "reminder-1", nil
		})

	mockQueue.EXPECT().
		RegisterReminder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, task *taskqueue.ReminderTask) (*taskqueue.TaskResponse, error) {
			if task.ReminderID != "reminder-1" {
				t.Errorf("unexpected reminder_id: got %q, want %q", task.ReminderID, "reminder-1")
			}
			if task.UserID != "user-1" {
				t.Errorf("unexpected user_id: got %q, want %q", task.UserID, "user-1")
			}
			if !task.ScheduleAt.Equal(wantTime) {
				t.Errorf("unexpected schedule_at: got %v, want %v", task.ScheduleAt, wantTime)
			}
			return &taskqueue.TaskResponse{Name: "projects/p/locations/l/queues/q/tasks/reminder-1"}, nil
		})

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	conf, err := svc.Schedule(context.Background(), &Request{
		UserID:       "user-1",
		Name:         "Asha",
		Medicine:     "Metformin",
		ReminderTime: "2030-01-01T09:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conf.ReminderID != "reminder-1" {
		t.Errorf("unexpected reminder id: got %q, want %q", conf.ReminderID, "reminder-1")
	}
	if !conf.ScheduledFor.Equal(wantTime) {
		t.Errorf("unexpected scheduled time: got %v, want %v", conf.ScheduledFor, wantTime)
	}
}

func TestSchedule_TimeZoneNormalization(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	// 09:00 in UTC+5:30 is 03:30 UTC.
	ist := time.FixedZone("IST", 5*3600+30*60)
	wantTime := time.Date(2030, 1, 1, 3, 30, 0, 0, time.UTC)

	mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *domain.Reminder) (string, error) {
			if !r.ReminderTime.Equal(wantTime) {
				t.Errorf("unexpected reminder_time: got %v, want %v", r.ReminderTime, wantTime)
			}
			return "reminder-ist", nil
		})

	mockQueue.EXPECT().
		RegisterReminder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, task *taskqueue.ReminderTask) (*taskqueue.TaskResponse, error) {
			if !task.ScheduleAt.Equal(wantTime) {
				t.Errorf("unexpected schedule_at: got %v, want %v", task.ScheduleAt, wantTime)
			}
			return &taskqueue.TaskResponse{Name: "task"}, nil
		})

	svc := NewService(mockRepo, mockQueue, ist, nil)

	conf, err := svc.Schedule(context.Background(), &Request{
		UserID:       "user-1",
		Name:         "Asha",
		Medicine:     "Metformin",
		ReminderTime: "2030-01-01T09:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conf.ScheduledFor.Equal(wantTime) {
		t.Errorf("unexpected scheduled time: got %v, want %v", conf.ScheduledFor, wantTime)
	}
}

func TestSchedule_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		request *Request
	}{
		{
			name: "empty name",
			request: &Request{
				UserID:       "user-1",
				Medicine:     "Metformin",
				ReminderTime: "2030-01-01T09:00",
			},
		},
		{
			name: "empty medicine",
			request: &Request{
				UserID:       "user-1",
				Name:         "Asha",
				ReminderTime: "2030-01-01T09:00",
			},
		},
		{
			name: "empty time",
			request: &Request{
				UserID:   "user-1",
				Name:     "Asha",
				Medicine: "Metformin",
			},
		},
		{
			name: "whitespace only fields",
			request: &Request{
				UserID:       "user-1",
				Name:         "   ",
				Medicine:     "Metformin",
				ReminderTime: "2030-01-01T09:00",
			},
		},
		{
			name: "invalid time format",
			request: &Request{
				UserID:       "user-1",
				Name:         "Asha",
				Medicine:     "Metformin",
				ReminderTime: "tomorrow morning",
			},
		},
		{
			name: "past time",
			request: &Request{
				UserID:       "user-1",
				Name:         "Asha",
				Medicine:     "Metformin",
				ReminderTime: "2020-01-01T09:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No expectations: validation must reject before any
			// repository or task queue call.
			mockRepo := domain.NewMockReminderRepository(ctrl)
			mockQueue := taskqueue.NewMockTaskQueue(ctrl)

			svc := NewService(mockRepo, mockQueue, time.UTC, nil)

			_, err := svc.Schedule(context.Background(), tt.request)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSchedule_RejectsCurrentInstant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)
	svc.now = func() time.Time {
		return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	}

	_, err := svc.Schedule(context.Background(), &Request{
		UserID:       "user-1",
		Name:         "Asha",
		Medicine:     "Metformin",
		ReminderTime: "2030-01-01T09:00",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for non-future time, got %v", err)
	}
}

func TestSchedule_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	storeErr := errors.New("firestore unavailable")

	mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return("", storeErr)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	_, err := svc.Schedule(context.Background(), &Request{
		UserID:       "user-1",
		Name:         "Asha",
		Medicine:     "Metformin",
		ReminderTime: "2030-01-01T09:00",
	})
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestSchedule_EnqueueFailureDeletesRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return("reminder-1", nil)

	mockQueue.EXPECT().
		RegisterReminder(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("queue unavailable"))

	mockRepo.EXPECT().
		Delete(gomock.Any(), "reminder-1").
		Return(nil)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	_, err := svc.Schedule(context.Background(), &Request{
		UserID:       "user-1",
		Name:         "Asha",
		Medicine:     "Metformin",
		ReminderTime: "2030-01-01T09:00",
	})
	if !errors.Is(err, domain.ErrDispatchFailed) {
		t.Errorf("expected ErrDispatchFailed, got %v", err)
	}
}

func TestCancel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	mockRepo.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:     "reminder-1",
			UserID: "user-1",
			Status: domain.StatusScheduled,
		}, nil)

	mockQueue.EXPECT().
		DeleteTask(gomock.Any(), "reminder-1").
		Return(nil)

	mockRepo.EXPECT().
		Delete(gomock.Any(), "reminder-1").
		Return(nil)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	if err := svc.Cancel(context.Background(), "user-1", "reminder-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCancel_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	mockRepo.EXPECT().
		Get(gomock.Any(), "missing").
		Return(nil, domain.ErrReminderNotFound)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	err := svc.Cancel(context.Background(), "user-1", "missing")
	if !errors.Is(err, domain.ErrReminderNotFound) {
		t.Errorf("expected ErrReminderNotFound, got %v", err)
	}
}

func TestCancel_ForeignUserReportedNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	mockRepo.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:     "reminder-1",
			UserID: "someone-else",
			Status: domain.StatusScheduled,
		}, nil)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	err := svc.Cancel(context.Background(), "user-1", "reminder-1")
	if !errors.Is(err, domain.ErrReminderNotFound) {
		t.Errorf("expected ErrReminderNotFound, got %v", err)
	}
}

func TestCancel_NotCancelable(t *testing.T) {
	tests := []struct {
		name   string
		status domain.Status
	}{
		{name: "processing", status: domain.StatusProcessing},
		{name: "completed", status: domain.StatusCompleted},
		{name: "failed", status: domain.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := domain.NewMockReminderRepository(ctrl)
			mockQueue := taskqueue.NewMockTaskQueue(ctrl)

			mockRepo.EXPECT().
				Get(gomock.Any(), "reminder-1").
				Return(&domain.Reminder{
					ID:     "reminder-1",
					UserID: "user-1",
					Status: tt.status,
				}, nil)

			svc := NewService(mockRepo, mockQueue, time.UTC, nil)

			err := svc.Cancel(context.Background(), "user-1", "reminder-1")
			if !errors.Is(err, domain.ErrNotCancelable) {
				t.Errorf("expected ErrNotCancelable, got %v", err)
			}
		})
	}
}

func TestCancel_TaskDeleteFailureKeepsRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	mockRepo.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:     "reminder-1",
			UserID: "user-1",
			Status: domain.StatusScheduled,
		}, nil)

	queueErr := errors.New("queue unavailable")

	mockQueue.EXPECT().
		DeleteTask(gomock.Any(), "reminder-1").
		Return(queueErr)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	err := svc.Cancel(context.Background(), "user-1", "reminder-1")
	if !errors.Is(err, queueErr) {
		t.Errorf("expected queue error, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockReminderRepository(ctrl)
	mockQueue := taskqueue.NewMockTaskQueue(ctrl)

	want := []*domain.Reminder{
		{ID: "reminder-1", UserID: "user-1", Name: "Asha", Medicine: "Metformin"},
		{ID: "reminder-2", UserID: "user-1", Name: "Asha", Medicine: "Aspirin"},
	}

	mockRepo.EXPECT().
		ListByUser(gomock.Any(), "user-1").
		Return(want, nil)

	svc := NewService(mockRepo, mockQueue, time.UTC, nil)

	got, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reminders, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("reminder[%d]: got ID %q, want %q", i, got[i].ID, want[i].ID)
		}
	}
}
