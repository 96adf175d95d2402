package models

import "time"

// ChatLink binds a Telegram chat id to an internal user account. At most one
// active link exists per user, and a chat id can only be rebound after its
// previous link has been deactivated.
type ChatLink struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"userId" db:"user_id"`
	ChatID        int64      `json:"chatId" db:"chat_id"`
	Handle        string     `json:"handle" db:"handle"`
	Active        bool       `json:"active" db:"active"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty" db:"deactivated_at"`
}
