package entity

import "time"

type Chat struct {
	ID              string    `json:"id" firestore:"id"`
	Name            string    `json:"name,omitempty" firestore:"name,omitempty"`
	IsGroup         bool      `json:"is_group" firestore:"isGroup"`
	Members         []string  `json:"members" firestore:"members"`
	AdminID         string    `json:"admin_id,omitempty" firestore:"adminId,omitempty"`
	LatestMessageID string    `json:"latest_message_id,omitempty" firestore:"latestMessageId,omitempty"`
	LatestMessageAt time.Time `json:"latest_message_at,omitempty" firestore:"latestMessageAt,omitempty"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}

// HasMember reports whether userID is a current member of the chat.
func (c *Chat) HasMember(userID string) bool {
	for _, id := range c.Members {
		if id == userID {
			return true
		}
	}
	return false
}
