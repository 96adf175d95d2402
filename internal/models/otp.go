package models

import "time"

// OTP purposes.
const (
	OTPRegister = "register"
	OTPLogin    = "login"
	OTPLink     = "link"
)

// OneTimeCode is keyed by phone number in the code store; a new request for
// the same phone overwrites any live code.
type OneTimeCode struct {
	PhoneNumber  string    `json:"phoneNumber"`
	Email        string    `json:"email,omitempty"`
	UserID       string    `json:"userId,omitempty"` // empty until the phone resolves to an account
	Name         string    `json:"name,omitempty"`
	Purpose      string    `json:"purpose"`
	Code         string    `json:"code"`
	AttemptCount int       `json:"attemptCount"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
