package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/duitku/backend/internal/config"
	"github.com/duitku/backend/internal/models"
)

// Linking codes use an unambiguous uppercase alphabet (no 0/O, 1/I) since
// users may type them into the chat by hand.
const linkCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// LinkCode is what the web UI shows the user: the code itself, a Telegram
// deep link, and a QR image of that link.
type LinkCode struct {
	Code      string    `json:"code"`
	DeepLink  string    `json:"deepLink"`
	QRPNG     []byte    `json:"qrPng"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LinkService issues single-use linking codes and maintains the chat_links
// binding between Telegram chat ids and user accounts.
type LinkService struct {
	db    *sql.DB
	redis *redis.Client
	cfg   *config.ChatLinkConfig
	now   func() time.Time
}

func NewLinkService(db *sql.DB, redisClient *redis.Client) *LinkService {
	return &LinkService{
		db:    db,
		redis: redisClient,
		cfg:   config.LoadChatLinkConfig(),
		now:   time.Now,
	}
}

func linkKey(code string) string {
	return fmt.Sprintf("link:%s", code)
}

// CreateLinkCode generates a fresh 5-minute linking code for the user and
// returns it with a deep link and QR image for the settings page.
func (s *LinkService) CreateLinkCode(ctx context.Context, userID string) (*LinkCode, error) {
	code := s.generateCode(8)

	if err := s.redis.Set(ctx, linkKey(code), userID, s.cfg.CodeTimeout).Err(); err != nil {
		log.Printf("[LINK] Failed to store link code for user %s: %v", userID, err)
		return nil, NewCodedError(CodeUpstream, "Failed to create linking code")
	}

	deepLink := fmt.Sprintf("https://t.me/%s?start=%s", s.cfg.BotUsername, code)
	png, err := qrcode.Encode(deepLink, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	log.Printf("[LINK] Linking code created for user %s, expires in %v", userID, s.cfg.CodeTimeout)
	return &LinkCode{
		Code:      code,
		DeepLink:  deepLink,
		QRPNG:     png,
		ExpiresAt: s.now().Add(s.cfg.CodeTimeout),
	}, nil
}

// ConsumeLinkCode binds chatID to the account that owns the code. The code is
// single-use. A chat id already actively linked to a different account must
// /unlink first; the owning user's previous link, if any, is deactivated so
// at most one active link exists per user.
func (s *LinkService) ConsumeLinkCode(ctx context.Context, code string, chatID int64, handle string) (*models.ChatLink, error) {
	userID, err := s.redis.Get(ctx, linkKey(code)).Result()
	if err == redis.Nil {
		return nil, NewCodedError(CodeNotFound, "Linking code is invalid or expired")
	}
	if err != nil {
		return nil, err
	}

	if err := s.redis.Del(ctx, linkKey(code)).Err(); err != nil {
		log.Printf("[LINK] Failed to delete consumed link code: %v", err)
	}

	existing, err := s.ActiveLink(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.UserID != userID {
		return nil, NewCodedError(CodeConflict, "This chat is linked to another account; /unlink first")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// One active link per user: retire any previous binding.
	if _, err := tx.Exec(`
		UPDATE chat_links
		SET active = false, deactivated_at = $1
		WHERE user_id = $2 AND active = true`,
		s.now(), userID); err != nil {
		return nil, err
	}

	link := &models.ChatLink{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChatID:    chatID,
		Handle:    handle,
		Active:    true,
		CreatedAt: s.now(),
	}

	if _, err := tx.Exec(`
		INSERT INTO chat_links (id, user_id, chat_id, handle, active, created_at)
		VALUES ($1, $2, $3, $4, true, $5)`,
		link.ID, link.UserID, link.ChatID, link.Handle, link.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[LINK] Chat %d linked to user %s", chatID, userID)
	return link, nil
}

// Deactivate retires the active link of a chat id.
func (s *LinkService) Deactivate(ctx context.Context, chatID int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE chat_links
		SET active = false, deactivated_at = $1
		WHERE chat_id = $2 AND active = true`,
		s.now(), chatID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewCodedError(CodeNotFound, "This chat is not linked to any account")
	}

	log.Printf("[LINK] Chat %d unlinked", chatID)
	return nil
}

// DeactivateForUser retires the user's active link (used by the web UI).
func (s *LinkService) DeactivateForUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE chat_links
		SET active = false, deactivated_at = $1
		WHERE user_id = $2 AND active = true`,
		s.now(), userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewCodedError(CodeNotFound, "No active chat link for this account")
	}
	return nil
}

// ActiveLink returns the active link for a chat id, or (nil, nil).
func (s *LinkService) ActiveLink(ctx context.Context, chatID int64) (*models.ChatLink, error) {
	var link models.ChatLink
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, chat_id, handle, active, created_at
		FROM chat_links
		WHERE chat_id = $1 AND active = true
		LIMIT 1
	`, chatID).Scan(&link.ID, &link.UserID, &link.ChatID, &link.Handle, &link.Active, &link.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *LinkService) generateCode(length int) string {
	code := make([]byte, length)
	charsetLen := big.NewInt(int64(len(linkCodeCharset)))
	for i := range code {
		n, _ := rand.Int(rand.Reader, charsetLen)
		code[i] = linkCodeCharset[n.Int64()]
	}
	return string(code)
}
