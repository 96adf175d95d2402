package models

import "time"

// Wallet kinds match the account tags produced by the chat parser, so a
// normalized tag like "ewallet" can be resolved straight to a wallet row.
const (
	WalletCash    = "cash"
	WalletBank    = "bank"
	WalletEwallet = "ewallet"
	WalletCustom  = "custom"
)

type Wallet struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Kind      string    `json:"kind" db:"kind"`
	Balance   int64     `json:"balance" db:"balance"` // smallest currency unit
	Currency  string    `json:"currency" db:"currency"`
	Version   int       `json:"version" db:"version"` // for optimistic locking
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
