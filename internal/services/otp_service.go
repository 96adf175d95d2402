package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/duitku/backend/internal/config"
	"github.com/duitku/backend/internal/models"
)

// OTPSender delivers a one-time code over the external channel. Delivery is
// awaited inline; a failure surfaces immediately and is never retried here.
type OTPSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// OTPManager owns the one-time-code lifecycle: issue, verify, expire. State
// moves strictly forward; once a record is deleted (consumed, expired or
// exhausted) the phone needs a fresh Issue before any further Verify.
type OTPManager struct {
	store  CodeStore
	sender OTPSender
	cfg    *config.OTPConfig
	now    func() time.Time
}

func NewOTPManager(store CodeStore, sender OTPSender, cfg *config.OTPConfig) *OTPManager {
	return &OTPManager{
		store:  store,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Issue generates a fresh code for the phone number, overwriting any live
// code, then hands it to the delivery channel. If delivery fails the stored
// code is left in place; the caller reports UPSTREAM_FAILURE and the record
// ages out on its own TTL.
func (m *OTPManager) Issue(ctx context.Context, phone, email, userID, name, purpose string) (*models.OneTimeCode, error) {
	now := m.now()
	code := &models.OneTimeCode{
		PhoneNumber:  phone,
		Email:        email,
		UserID:       userID,
		Name:         name,
		Purpose:      purpose,
		Code:         m.generateCode(),
		AttemptCount: 0,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.cfg.CodeTimeout),
	}

	if err := m.store.Put(ctx, code, m.cfg.CodeTimeout); err != nil {
		log.Printf("[OTP] Failed to store code for %s: %v", phone, err)
		return nil, NewCodedError(CodeUpstream, "Failed to store verification code")
	}

	if err := m.sender.SendOTP(ctx, phone, code.Code); err != nil {
		log.Printf("[OTP] Delivery failed for %s: %v", phone, err)
		return nil, NewCodedError(CodeUpstream, "Failed to deliver verification code")
	}

	log.Printf("[OTP] Code issued for %s (purpose: %s, expires: %v)", phone, purpose, code.ExpiresAt)
	return code, nil
}

// Verify checks a submitted code against the stored record. Expired and
// exhausted records are deleted before the error is returned; a matching code
// is single-use and deleted on success.
func (m *OTPManager) Verify(ctx context.Context, phone, submitted string) (*models.OneTimeCode, error) {
	stored, err := m.store.Get(ctx, phone)
	if err != nil {
		log.Printf("[OTP] Store read failed for %s: %v", phone, err)
		return nil, NewCodedError(CodeUpstream, "Failed to load verification code")
	}
	if stored == nil {
		return nil, NewCodedError(CodeNotFound, "No verification code found; request a new one")
	}

	if m.now().After(stored.ExpiresAt) {
		if err := m.store.Delete(ctx, phone); err != nil {
			log.Printf("[OTP] Failed to delete expired code for %s: %v", phone, err)
		}
		return nil, NewCodedError(CodeExpired, "Verification code expired; request a new one")
	}

	if stored.AttemptCount >= m.cfg.MaxAttempts {
		if err := m.store.Delete(ctx, phone); err != nil {
			log.Printf("[OTP] Failed to delete exhausted code for %s: %v", phone, err)
		}
		return nil, NewCodedError(CodeExhausted, "Too many wrong attempts; request a new code")
	}

	if submitted != stored.Code {
		stored.AttemptCount++
		remaining := m.cfg.MaxAttempts - stored.AttemptCount
		ttl := stored.ExpiresAt.Sub(m.now())
		if err := m.store.Put(ctx, stored, ttl); err != nil {
			log.Printf("[OTP] Failed to record attempt for %s: %v", phone, err)
		}
		coded := NewCodedError(CodeMismatch, fmt.Sprintf("Wrong code, %d attempts remaining", remaining))
		coded.RemainingAttempts = remaining
		return nil, coded
	}

	if err := m.store.Delete(ctx, phone); err != nil {
		log.Printf("[OTP] Failed to delete consumed code for %s: %v", phone, err)
	}

	log.Printf("[OTP] Code verified for %s (purpose: %s)", phone, stored.Purpose)
	return stored, nil
}

// Reissue replaces the pending code for a phone number with a fresh one,
// keeping the purpose and identity fields from the original request. Fails
// with NOT_FOUND when nothing is pending.
func (m *OTPManager) Reissue(ctx context.Context, phone string) (*models.OneTimeCode, error) {
	stored, err := m.store.Get(ctx, phone)
	if err != nil {
		log.Printf("[OTP] Store read failed for %s: %v", phone, err)
		return nil, NewCodedError(CodeUpstream, "Failed to load verification code")
	}
	if stored == nil {
		return nil, NewCodedError(CodeNotFound, "No pending verification for this phone number")
	}

	return m.Issue(ctx, stored.PhoneNumber, stored.Email, stored.UserID, stored.Name, stored.Purpose)
}

func (m *OTPManager) generateCode() string {
	const charset = "0123456789"
	code := make([]byte, m.cfg.CodeLength)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := range code {
		n, _ := rand.Int(rand.Reader, charsetLen)
		code[i] = charset[n.Int64()]
	}

	return string(code)
}
