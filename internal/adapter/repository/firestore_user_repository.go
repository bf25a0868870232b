package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Upsert(ctx context.Context, user *entity.User) error {
	// Merge-write so repeated sign-ins refresh identity fields without
	// clobbering anything else on the document (e.g. fcmToken).
	data := map[string]interface{}{
		"uid":      user.UID,
		"lastSeen": user.LastSeen,
	}
	if user.DisplayName != "" {
		data["displayName"] = user.DisplayName
	}
	if user.Email != "" {
		data["email"] = user.Email
	}
	if user.PhotoURL != "" {
		data["photoURL"] = user.PhotoURL
	}

	_, err := r.client.Collection("users").Doc(user.UID).Set(ctx, data, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to upsert user", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, uid string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.UID = doc.Ref.ID

	return &user, nil
}

func (r *firestoreUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	iter := r.client.Collection("users").Documents(ctx)
	var users []*entity.User

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			continue // Skip malformed documents
		}
		user.UID = doc.Ref.ID
		users = append(users, &user)
	}

	return users, nil
}

func (r *firestoreUserRepository) SetFCMToken(ctx context.Context, uid, token string) error {
	_, err := r.client.Collection("users").Doc(uid).Set(ctx, map[string]interface{}{
		"fcmToken": token,
	}, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to store FCM token", err)
	}

	return nil
}
