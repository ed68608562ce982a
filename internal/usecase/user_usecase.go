package usecase

import (
	"context"
	"io"

	"chatwave/internal/domain/entity"
	"chatwave/internal/domain/repository"
)

type UserUseCase struct {
	userRepo    repository.UserRepository
	avatarStore AvatarStore
}

func NewUserUseCase(userRepo repository.UserRepository, avatarStore AvatarStore) *UserUseCase {
	return &UserUseCase{
		userRepo:    userRepo,
		avatarStore: avatarStore,
	}
}

func (uc *UserUseCase) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// Search finds users by name or email substring, excluding the caller.
func (uc *UserUseCase) Search(ctx context.Context, callerID, keyword string) ([]*entity.User, error) {
	return uc.userRepo.Search(ctx, keyword, callerID)
}

// UpdateAvatar uploads a new avatar image and points the profile at it.
func (uc *UserUseCase) UpdateAvatar(ctx context.Context, userID string, file io.Reader, contentType string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := uc.avatarStore.UploadAvatar(ctx, file, contentType)
	if err != nil {
		return nil, err
	}

	user.AvatarURL = url
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
