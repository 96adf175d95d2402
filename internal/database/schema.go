package database

import (
	"database/sql"
	"log"
)

// Amounts are whole rupiah in BIGINT columns; there are no fractional IDR
// amounts. Wallet versions back the optimistic balance updates.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL UNIQUE,
		avatar_url TEXT,
		currency TEXT NOT NULL DEFAULT 'IDR',
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		balance BIGINT NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'IDR',
		version INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallets_user ON wallets(user_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		amount BIGINT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'others',
		wallet_id UUID REFERENCES wallets(id),
		counter_wallet_id UUID REFERENCES wallets(id),
		origin TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_occurred ON transactions(user_id, occurred_at DESC)`,
	`CREATE TABLE IF NOT EXISTS chat_links (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		chat_id BIGINT NOT NULL,
		handle TEXT,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL,
		deactivated_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_links_chat ON chat_links(chat_id) WHERE active`,
}

// Migrate applies the schema statements in order. Every statement is
// idempotent, so re-running on startup is safe.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	log.Println("Database schema is up to date")
	return nil
}
