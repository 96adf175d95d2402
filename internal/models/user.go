package models

import "time"

type User struct {
	ID          string     `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Name        string     `json:"name" db:"name"`
	PhoneNumber string     `json:"phoneNumber" db:"phone_number"`
	AvatarURL   string     `json:"avatarUrl,omitempty" db:"avatar_url"`
	Currency    string     `json:"currency" db:"currency"` // preferred display currency, IDR by default
	LastLogin   *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
