package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/duitku/backend/internal/models"
	"github.com/duitku/backend/internal/parser"
)

// LedgerService owns wallet balances and ledger entries. Balance mutations go
// through optimistic version checks the same way transfers do on the HTTP
// side, so a concurrent chat message and dashboard edit cannot silently lose
// an update.
type LedgerService struct {
	db  *sql.DB
	now func() time.Time
}

// ChatReceipt summarizes what a chat command did to the ledger, for the
// confirmation reply.
type ChatReceipt struct {
	Entry         models.LedgerEntry
	Wallet        *models.Wallet // resolved primary wallet, nil when unresolved
	CounterWallet *models.Wallet // transfer destination, nil unless both sides resolved
	BalanceMoved  bool
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db, now: time.Now}
}

// Wallets lists all wallets of a user, oldest first.
func (s *LedgerService) Wallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, kind, balance, currency, version, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Kind, &w.Balance, &w.Currency, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}

	return wallets, rows.Err()
}

// WalletByTag resolves a parser account tag (normalized kind or free-form
// name) to one of the user's wallets. Returns (nil, nil) when nothing
// matches.
func (s *LedgerService) WalletByTag(ctx context.Context, userID, tag string) (*models.Wallet, error) {
	if tag == "" {
		return nil, nil
	}

	var w models.Wallet
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, balance, currency, version, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND (kind = $2 OR LOWER(name) = $2)
		ORDER BY created_at ASC
		LIMIT 1
	`, userID, tag).Scan(&w.ID, &w.UserID, &w.Name, &w.Kind, &w.Balance, &w.Currency, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// RecentEntries returns the newest ledger entries of a user.
func (s *LedgerService) RecentEntries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, description, category, COALESCE(wallet_id, ''), COALESCE(counter_wallet_id, ''), origin, occurred_at, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Amount, &e.Description, &e.Category, &e.WalletID, &e.CounterWalletID, &e.Origin, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RecordChatCommand persists a parsed chat command: one ledger entry tagged
// origin=chat, plus a balance adjustment on the resolved wallet (+amount for
// income, -amount for expense). Transfers move balance only when both sides
// resolve to concrete wallets; otherwise the entry is recorded with no
// balance effect.
func (s *LedgerService) RecordChatCommand(ctx context.Context, userID string, cmd parser.ParsedCommand) (*ChatReceipt, error) {
	source, err := s.WalletByTag(ctx, userID, cmd.SourceAccount)
	if err != nil {
		return nil, err
	}
	destination, err := s.WalletByTag(ctx, userID, cmd.DestinationAccount)
	if err != nil {
		return nil, err
	}

	receipt := &ChatReceipt{
		Entry: models.LedgerEntry{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        string(cmd.Type),
			Amount:      cmd.Amount,
			Description: cmd.Description,
			Category:    cmd.CategoryHint,
			Origin:      models.OriginChat,
			OccurredAt:  s.now(),
		},
	}

	switch cmd.Type {
	case parser.TxIncome:
		// Income lands on the destination wallet when named ("Gaji 5jt ke
		// bank"), otherwise on the source fragment if that is all there is.
		receipt.Wallet = destination
		if receipt.Wallet == nil {
			receipt.Wallet = source
		}
	case parser.TxTransfer:
		receipt.Wallet = source
		receipt.CounterWallet = destination
	default:
		receipt.Wallet = source
		if receipt.Wallet == nil {
			receipt.Wallet = destination
		}
	}

	if receipt.Wallet != nil {
		receipt.Entry.WalletID = receipt.Wallet.ID
	}
	if receipt.CounterWallet != nil {
		receipt.Entry.CounterWalletID = receipt.CounterWallet.ID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.insertEntry(tx, &receipt.Entry); err != nil {
		return nil, err
	}

	switch cmd.Type {
	case parser.TxIncome:
		if receipt.Wallet != nil {
			if err := s.adjustBalance(tx, receipt.Wallet, cmd.Amount); err != nil {
				return nil, err
			}
			receipt.BalanceMoved = true
		}
	case parser.TxExpense:
		if receipt.Wallet != nil {
			if err := s.adjustBalance(tx, receipt.Wallet, -cmd.Amount); err != nil {
				return nil, err
			}
			receipt.BalanceMoved = true
		}
	case parser.TxTransfer:
		// Record-only unless both wallets resolved; manual reconciliation is
		// expected for the unresolved case.
		if receipt.Wallet != nil && receipt.CounterWallet != nil {
			if err := s.adjustBalance(tx, receipt.Wallet, -cmd.Amount); err != nil {
				return nil, err
			}
			if err := s.adjustBalance(tx, receipt.CounterWallet, cmd.Amount); err != nil {
				return nil, err
			}
			receipt.BalanceMoved = true
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[LEDGER] Chat entry recorded - user: %s, type: %s, amount: %d, balanceMoved: %v",
		userID, cmd.Type, cmd.Amount, receipt.BalanceMoved)
	return receipt, nil
}

func (s *LedgerService) insertEntry(tx *sql.Tx, entry *models.LedgerEntry) error {
	_, err := tx.Exec(`
		INSERT INTO transactions (id, user_id, type, amount, description, category, wallet_id, counter_wallet_id, origin, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11)`,
		entry.ID, entry.UserID, entry.Type, entry.Amount, entry.Description, entry.Category,
		entry.WalletID, entry.CounterWalletID, entry.Origin, entry.OccurredAt, s.now())
	return err
}

func (s *LedgerService) adjustBalance(tx *sql.Tx, wallet *models.Wallet, delta int64) error {
	result, err := tx.Exec(`
		UPDATE wallets
		SET balance = balance + $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		delta, s.now(), wallet.ID, wallet.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return NewCodedError(CodeConflict, "Wallet was modified concurrently, try again")
	}

	wallet.Balance += delta
	wallet.Version++
	return nil
}

// CreateWallet inserts a wallet row; used at registration for the default
// cash wallet and by the wallet endpoints.
func (s *LedgerService) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, name, kind, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $7)`,
		wallet.ID, wallet.UserID, wallet.Name, wallet.Kind, wallet.Balance, wallet.Currency, s.now())
	return err
}
