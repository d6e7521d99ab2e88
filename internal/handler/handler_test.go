package handler

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/identity"
	"github.com/medimind/reminder-dispatch/internal/infra/push"
	"github.com/medimind/reminder-dispatch/internal/infra/taskqueue"
	"github.com/medimind/reminder-dispatch/internal/service/delivery"
	"github.com/medimind/reminder-dispatch/internal/service/schedule"
	"github.com/medimind/reminder-dispatch/internal/service/token"
)

type testMocks struct {
	reminders *domain.MockReminderRepository
	users     *domain.MockUserRepository
	queue     *taskqueue.MockTaskQueue
	sender    *push.MockSender
}

// newTestRouter wires the real services and handlers over mocked
// collaborators, mirroring the production route table.
func newTestRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *testMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mocks := &testMocks{
		reminders: domain.NewMockReminderRepository(ctrl),
		users:     domain.NewMockUserRepository(ctrl),
		queue:     taskqueue.NewMockTaskQueue(ctrl),
		sender:    push.NewMockSender(ctrl),
	}

	scheduleService := schedule.NewService(mocks.reminders, mocks.queue, time.UTC, nil)
	deliveryService := delivery.NewService(mocks.reminders, mocks.users, mocks.sender, nil, nil)
	tokenService := token.NewService(mocks.users, nil)

	reminderHandler := NewReminderHandler(scheduleService, time.UTC)
	callbackHandler := NewCallbackHandler(deliveryService)
	tokenHandler := NewTokenHandler(tokenService)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.ParseFS(TemplatesFS, "templates/*.html")))

	r.GET("/", HandleHome)
	r.POST("/send-reminder", callbackHandler.HandleSendReminder)

	authed := r.Group("/")
	authed.Use(identity.Middleware(identity.NewStaticResolver("user-1")))
	authed.POST("/submit", reminderHandler.HandleSubmit)
	authed.POST("/save-token", tokenHandler.HandleSaveToken)
	authed.POST("/cancel-reminder", reminderHandler.HandleCancel)
	authed.GET("/reminders", reminderHandler.HandleList)

	return r, mocks
}

func TestHandleSubmit_FormRedirectsWithFlash(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return("reminder-1", nil)

	mocks.queue.EXPECT().
		RegisterReminder(gomock.Any(), gomock.Any()).
		Return(&taskqueue.TaskResponse{Name: "task"}, nil)

	form := url.Values{
		"name":     {"Asha"},
		"medicine": {"Metformin"},
		"time":     {"2030-01-01T09:00"},
	}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusSeeOther)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid redirect location: %v", err)
	}
	flash := loc.Query().Get("flash")
	if !strings.Contains(flash, "Reminder set for Asha at 2030-01-01 09:00 UTC") {
		t.Errorf("unexpected flash message: %q", flash)
	}
}

func TestHandleSubmit_JSONSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return("reminder-1", nil)

	mocks.queue.EXPECT().
		RegisterReminder(gomock.Any(), gomock.Any()).
		Return(&taskqueue.TaskResponse{Name: "task"}, nil)

	body := `{"name":"Asha","medicine":"Metformin","time":"2030-01-01T09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp submitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "reminder-1" {
		t.Errorf("unexpected id: got %q", resp.ID)
	}
	if resp.ScheduledFor != "2030-01-01T09:00:00Z" {
		t.Errorf("unexpected scheduled_for: got %q", resp.ScheduledFor)
	}
	if !strings.Contains(resp.Message, "Reminder set for Asha") {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestHandleSubmit_FormValidationRedirects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(t, ctrl)

	// Medicine missing: no repository or queue call expected.
	form := url.Values{
		"name": {"Asha"},
		"time": {"2030-01-01T09:00"},
	}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusSeeOther)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid redirect location: %v", err)
	}
	flash := loc.Query().Get("flash")
	if !strings.Contains(flash, "all fields are required") {
		t.Errorf("unexpected flash message: %q", flash)
	}
}

func TestHandleSubmit_JSONValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(t, ctrl)

	body := `{"name":"Asha","medicine":"Metformin","time":"not-a-time"}`
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "validation_error" {
		t.Errorf("unexpected error type: got %q", resp.Error)
	}
}

func TestHandleSendReminder_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	longToken := strings.Repeat("x", 64)

	mocks.reminders.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:       "reminder-1",
			UserID:   "user-1",
			Medicine: "Metformin",
			Status:   domain.StatusScheduled,
		}, nil)

	mocks.reminders.EXPECT().
		ClaimProcessing(gomock.Any(), "reminder-1").
		Return(domain.ClaimGranted, nil)

	mocks.users.EXPECT().
		Get(gomock.Any(), "user-1").
		Return(&domain.User{ID: "user-1", FCMTokens: []string{longToken}}, nil)

	mocks.sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return("message-123", nil)

	mocks.reminders.EXPECT().
		MarkCompleted(gomock.Any(), "reminder-1", "message-123").
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/send-reminder", strings.NewReader("reminder-1"))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, body %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "Success" {
		t.Errorf("unexpected body: got %q, want %q", w.Body.String(), "Success")
	}
}

func TestHandleSendReminder_AlreadyProcessed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:     "reminder-1",
			UserID: "user-1",
			Status: domain.StatusCompleted,
		}, nil)

	mocks.reminders.EXPECT().
		ClaimProcessing(gomock.Any(), "reminder-1").
		Return(domain.ClaimAlreadyCompleted, nil)

	req := httptest.NewRequest(http.MethodPost, "/send-reminder", strings.NewReader("reminder-1"))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", w.Code)
	}
	if w.Body.String() != "Already processed" {
		t.Errorf("unexpected body: got %q, want %q", w.Body.String(), "Already processed")
	}
}

func TestHandleSendReminder_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		Get(gomock.Any(), "missing").
		Return(nil, domain.ErrReminderNotFound)

	req := httptest.NewRequest(http.MethodPost, "/send-reminder", strings.NewReader("missing"))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusNotFound)
	}
	if w.Body.String() != "Document not found" {
		t.Errorf("unexpected body: got %q, want %q", w.Body.String(), "Document not found")
	}
}

func TestHandleSendReminder_EmptyBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/send-reminder", strings.NewReader(""))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusNotFound)
	}
	if w.Body.String() != "Document not found" {
		t.Errorf("unexpected body: got %q", w.Body.String())
	}
}

func TestHandleSendReminder_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:     "reminder-1",
			UserID: "user-1",
			Status: domain.StatusScheduled,
		}, nil)

	mocks.reminders.EXPECT().
		ClaimProcessing(gomock.Any(), "reminder-1").
		Return(domain.ClaimGranted, nil)

	mocks.users.EXPECT().
		Get(gomock.Any(), "user-1").
		Return(&domain.User{ID: "user-1", FCMTokens: []string{"too-short"}}, nil)

	mocks.reminders.EXPECT().
		MarkFailed(gomock.Any(), "reminder-1", gomock.Any()).
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/send-reminder", strings.NewReader("reminder-1"))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w.Body.String() != "Invalid FCM token" {
		t.Errorf("unexpected body: got %q", w.Body.String())
	}
}

func TestHandleSendReminder_MissingUserConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		Get(gomock.Any(), "reminder-1").
		Return(&domain.Reminder{
			ID:     "reminder-1",
			UserID: "user-1",
			Status: domain.StatusScheduled,
		}, nil)

	mocks.reminders.EXPECT().
		ClaimProcessing(gomock.Any(), "reminder-1").
		Return(domain.ClaimGranted, nil)

	mocks.users.EXPECT().
		Get(gomock.Any(), "user-1").
		Return(nil, domain.ErrUserNotFound)

	mocks.reminders.EXPECT().
		MarkFailed(gomock.Any(), "reminder-1", gomock.Any()).
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/send-reminder", strings.NewReader("reminder-1"))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w.Body.String() != "Invalid user configuration" {
		t.Errorf("unexpected body: got %q", w.Body.String())
	}
}

func TestHandleSaveToken(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *testMocks)
		wantStatus int
		wantBody   string
	}{
		{
			name: "success",
			body: `{"token":"device-token-abc"}`,
			setup: func(m *testMocks) {
				m.users.EXPECT().
					AppendToken(gomock.Any(), "user-1", "device-token-abc").
					Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Token saved",
		},
		{
			name:       "empty token",
			body:       `{"token":""}`,
			setup:      func(m *testMocks) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			r, mocks := newTestRouter(t, ctrl)
			tt.setup(mocks)

			req := httptest.NewRequest(http.MethodPost, "/save-token", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("unexpected body: got %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandleSaveToken_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.users.EXPECT().
		AppendToken(gomock.Any(), "user-1", "device-token-abc").
		Return(domain.ErrDeliveryFailed)

	req := httptest.NewRequest(http.MethodPost, "/save-token", strings.NewReader(`{"token":"device-token-abc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if w.Body.String() != "Error saving token" {
		t.Errorf("unexpected body: got %q", w.Body.String())
	}
}

func TestHandleCancel(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(m *testMocks)
		wantStatus int
	}{
		{
			name: "success",
			setup: func(m *testMocks) {
				m.reminders.EXPECT().
					Get(gomock.Any(), "reminder-1").
					Return(&domain.Reminder{
						ID:     "reminder-1",
						UserID: "user-1",
						Status: domain.StatusScheduled,
					}, nil)
				m.queue.EXPECT().
					DeleteTask(gomock.Any(), "reminder-1").
					Return(nil)
				m.reminders.EXPECT().
					Delete(gomock.Any(), "reminder-1").
					Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not cancellable",
			setup: func(m *testMocks) {
				m.reminders.EXPECT().
					Get(gomock.Any(), "reminder-1").
					Return(&domain.Reminder{
						ID:     "reminder-1",
						UserID: "user-1",
						Status: domain.StatusCompleted,
					}, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "foreign reminder reported not found",
			setup: func(m *testMocks) {
				m.reminders.EXPECT().
					Get(gomock.Any(), "reminder-1").
					Return(&domain.Reminder{
						ID:     "reminder-1",
						UserID: "someone-else",
						Status: domain.StatusScheduled,
					}, nil)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			r, mocks := newTestRouter(t, ctrl)
			tt.setup(mocks)

			req := httptest.NewRequest(http.MethodPost, "/cancel-reminder", strings.NewReader(`{"id":"reminder-1"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp cancelResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !resp.Success {
					t.Error("expected success response")
				}
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, mocks := newTestRouter(t, ctrl)

	mocks.reminders.EXPECT().
		ListByUser(gomock.Any(), "user-1").
		Return([]*domain.Reminder{
			{
				ID:           "reminder-1",
				UserID:       "user-1",
				Name:         "Asha",
				Medicine:     "Metformin",
				ReminderTime: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
				Status:       domain.StatusScheduled,
			},
			{
				ID:           "reminder-2",
				UserID:       "user-1",
				Name:         "Asha",
				Medicine:     "Aspirin",
				ReminderTime: time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC),
				Status:       domain.StatusCompleted,
			},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/reminders", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", w.Code)
	}

	var resp struct {
		Reminders []reminderItem `json:"reminders"`
		Count     int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("unexpected count: got %d, want 2", resp.Count)
	}
	if len(resp.Reminders) != 2 {
		t.Fatalf("unexpected reminders length: got %d", len(resp.Reminders))
	}
	if resp.Reminders[0].ReminderTime != "2030-01-01T09:00:00Z" {
		t.Errorf("unexpected reminder_time: got %q", resp.Reminders[0].ReminderTime)
	}
	if resp.Reminders[1].Status != string(domain.StatusCompleted) {
		t.Errorf("unexpected status: got %q", resp.Reminders[1].Status)
	}
}

func TestHandleHome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r, _ := newTestRouter(t, ctrl)

	req := httptest.NewRequest(http.MethodGet, "/?flash=saved", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "saved") {
		t.Error("expected flash message in rendered page")
	}
	if !strings.Contains(w.Body.String(), "/submit") {
		t.Error("expected submission form in rendered page")
	}
}
