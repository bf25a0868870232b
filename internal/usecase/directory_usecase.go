package usecase

import (
	"context"

	"hiichat/internal/domain/entity"
	"hiichat/internal/domain/repository"
)

type DirectoryUseCase struct {
	userRepo repository.UserRepository
}

func NewDirectoryUseCase(userRepo repository.UserRepository) *DirectoryUseCase {
	return &DirectoryUseCase{
		userRepo: userRepo,
	}
}

type DirectoryEntry struct {
	*entity.User
	UnseenCount int `json:"unseen_count"`
}

// ListPeers returns every known user except the viewer, with live unseen
// badge counts merged in.
func (uc *DirectoryUseCase) ListPeers(ctx context.Context, selfID string, unseen map[string]int) ([]*DirectoryEntry, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*DirectoryEntry, 0, len(users))
	for _, user := range users {
		if user.UID == selfID {
			continue
		}
		entries = append(entries, &DirectoryEntry{
			User:        user,
			UnseenCount: unseen[user.UID],
		})
	}

	return entries, nil
}
