package repository

import (
	"context"

	"chatwave/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Search(ctx context.Context, keyword, excludeUserID string) ([]*entity.User, error)
}
