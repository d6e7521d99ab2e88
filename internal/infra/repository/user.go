package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/medimind/reminder-dispatch/internal/domain"
)

const usersCollection = "users"

type userRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) domain.UserRepository {
	return &userRepository{
		client: client,
	}
}

func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user document: %w", err)
	}

	var user domain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, ErrInvalidUserData
	}
	user.ID = snap.Ref.ID

	return &user, nil
}

func (r *userRepository) AppendToken(ctx context.Context, userID, token string) error {
	// Merge-set with ArrayUnion upserts the user document, so token
	// registration works before any other user data exists.
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"fcm_tokens": firestore.ArrayUnion(token),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to append device token: %w", err)
	}
	return nil
}
