package usecase

import (
	"context"
	"time"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
	"hiichat/pkg/errors"
	"hiichat/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

// SyncSignIn merge-writes the signed-in identity into the user directory.
// Called on every sign-in: creates the user on first sign-in, refreshes
// lastSeen (and any changed profile fields) on every subsequent one.
func (uc *AuthUseCase) SyncSignIn(ctx context.Context, uid string) (*entity.User, error) {
	identity, err := uc.firebaseAuth.Lookup(ctx, uid)
	if err != nil {
		logger.Error("SyncSignIn: identity lookup for %s failed: %v", uid, err)
		return nil, errors.Unauthorized("Failed to resolve identity", err)
	}

	user := &entity.User{
		UID:         identity.UID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		PhotoURL:    identity.PhotoURL,
		LastSeen:    time.Now(),
	}

	if err := uc.userRepo.Upsert(ctx, user); err != nil {
		logger.Error("SyncSignIn: upsert for %s failed: %v", uid, err)
		return nil, err
	}

	return user, nil
}

// RegisterPushToken stores the device registration token on the user
// document. Token trouble degrades push to a disabled feature.
func (uc *AuthUseCase) RegisterPushToken(ctx context.Context, uid, token string) error {
	if token == "" {
		logger.Warn("RegisterPushToken: no registration token available for %s", uid)
		return nil
	}

	if err := uc.userRepo.SetFCMToken(ctx, uid, token); err != nil {
		// Log and continue: the application stays usable without push.
		logger.Warn("RegisterPushToken: storing token for %s failed: %v", uid, err)
		return nil
	}

	return nil
}
