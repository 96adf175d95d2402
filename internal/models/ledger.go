package models

import "time"

// Ledger entry origins.
const (
	OriginManual = "manual"
	OriginOCR    = "ocr"
	OriginChat   = "chat"
)

type LedgerEntry struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"userId" db:"user_id"`
	Type            string    `json:"type" db:"type"` // income, expense, transfer
	Amount          int64     `json:"amount" db:"amount"`
	Description     string    `json:"description" db:"description"`
	Category        string    `json:"category" db:"category"`
	WalletID        string    `json:"walletId,omitempty" db:"wallet_id"`
	CounterWalletID string    `json:"counterWalletId,omitempty" db:"counter_wallet_id"` // transfer destination
	Origin          string    `json:"origin" db:"origin"`
	OccurredAt      time.Time `json:"occurredAt" db:"occurred_at"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
