package usecase

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chatwave/internal/domain/entity"
	"chatwave/internal/domain/repository"
	"chatwave/pkg/errors"
	"chatwave/pkg/logger"
)

type AuthUseCase struct {
	userRepo       repository.UserRepository
	tokenManager   TokenManager
	googleVerifier GoogleVerifier
}

func NewAuthUseCase(userRepo repository.UserRepository, tokenManager TokenManager, googleVerifier GoogleVerifier) *AuthUseCase {
	return &AuthUseCase{
		userRepo:       userRepo,
		tokenManager:   tokenManager,
		googleVerifier: googleVerifier,
	}
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AvatarURL string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.BadRequest("Email already in use", nil)
	}
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	now := time.Now()
	user := &entity.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(hash),
		AvatarURL:    input.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := uc.tokenManager.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		// Account created through Google sign-in
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	token, err := uc.tokenManager.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GoogleLogin verifies a Firebase ID token and signs the user in, creating
// the local account on first login.
func (uc *AuthUseCase) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := uc.googleVerifier.VerifyGoogleToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(identity.Email)

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		now := time.Now()
		user = &entity.User{
			Name:      identity.Name,
			Email:     email,
			GoogleID:  identity.UID,
			AvatarURL: identity.Picture,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		logger.Info("Created user %s from Google identity", user.ID)
	}

	token, err := uc.tokenManager.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}
