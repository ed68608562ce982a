package usecase

import (
	"context"
	"io"

	"chatwave/internal/infrastructure/firebase"
)

// TokenManager issues and verifies bearer credentials.
type TokenManager interface {
	Generate(userID string) (string, error)
	Verify(token string) (string, error)
}

// GoogleVerifier validates external identity tokens from Google sign-in.
type GoogleVerifier interface {
	VerifyGoogleToken(ctx context.Context, idToken string) (*firebase.GoogleIdentity, error)
}

// AvatarStore persists uploaded avatar images and returns their URL.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, file io.Reader, contentType string) (string, error)
}
