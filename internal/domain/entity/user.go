package entity

import "time"

type User struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"-" firestore:"passwordHash,omitempty"`
	GoogleID     string    `json:"-" firestore:"googleId,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}
