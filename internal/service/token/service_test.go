package token

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/medimind/reminder-dispatch/internal/domain"
)

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := domain.NewMockUserRepository(ctrl)

	mockUsers.EXPECT().
		AppendToken(gomock.Any(), "user-1", "device-token-abc").
		Return(nil)

	svc := NewService(mockUsers, nil)

	if err := svc.Register(context.Background(), "user-1", "device-token-abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegister_TrimsWhitespace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := domain.NewMockUserRepository(ctrl)

	mockUsers.EXPECT().
		AppendToken(gomock.Any(), "user-1", "device-token-abc").
		Return(nil)

	svc := NewService(mockUsers, nil)

	if err := svc.Register(context.Background(), "user-1", "  device-token-abc  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegister_EmptyToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "whitespace only", token: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No AppendToken call expected for invalid tokens.
			mockUsers := domain.NewMockUserRepository(ctrl)

			svc := NewService(mockUsers, nil)

			err := svc.Register(context.Background(), "user-1", tt.token)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := domain.NewMockUserRepository(ctrl)

	storeErr := errors.New("firestore unavailable")

	mockUsers.EXPECT().
		AppendToken(gomock.Any(), "user-1", "device-token-abc").
		Return(storeErr)

	svc := NewService(mockUsers, nil)

	err := svc.Register(context.Background(), "user-1", "device-token-abc")
	if !errors.Is(err, storeErr) {
		t.Errorf("expected store error, got %v", err)
	}
}
