package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"chatwave/pkg/errors"
)

// GoogleIdentity is the external identity extracted from a verified Firebase
// ID token during Google sign-in.
type GoogleIdentity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyGoogleToken validates a Firebase ID token and returns the identity
// claims needed to find or create the local user.
func (f *FirebaseAuthClient) VerifyGoogleToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	result, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid Google identity token", err)
	}

	identity := &GoogleIdentity{UID: result.UID}
	if email, ok := result.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := result.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := result.Claims["picture"].(string); ok {
		identity.Picture = picture
	}

	if identity.Email == "" {
		return nil, errors.BadRequest("Google identity token carries no email", nil)
	}

	return identity, nil
}
