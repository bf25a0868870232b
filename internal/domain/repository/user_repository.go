package repository

import (
	"context"

	"hiichat/internal/domain/entity"
)

type UserRepository interface {
	// Upsert merge-writes the user document, leaving fields that are not
	// set on the entity untouched.
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, uid string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	SetFCMToken(ctx context.Context, uid, token string) error
}
