package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/duitku/backend/internal/models"
)

// AuthService implements the OTP-based registration and login flows. There
// are no passwords: proving control of the phone number via WhatsApp OTP is
// the credential.
type AuthService struct {
	db        *sql.DB
	redis     *redis.Client
	otp       *OTPManager
	limiter   *FixedWindowLimiter
	validator *validator.Validate
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2" example:"Budi Santoso"`
	Email       string `json:"email" validate:"required,email" example:"budi@example.com"`
	PhoneNumber string `json:"phoneNumber" validate:"required,e164" example:"+6281234567890"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
}

type PhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
}

// AuthResponse carries the sign-in token after a successful verification.
type AuthResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, otp *OTPManager, limiter *FixedWindowLimiter) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		otp:       otp,
		limiter:   limiter,
		validator: validator.New(),
	}
}

func (s *AuthService) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		SendErrorResponse(w, CodeValidation, "Invalid request", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, CodeValidation, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := s.validator.Struct(dst); err != nil {
		SendErrorResponse(w, CodeValidation, "Validation failed", http.StatusBadRequest, err)
		return false
	}

	return true
}

// otpIssued writes the standard "OTP sent" response. Development environments
// echo the code in the body for local testing; production never does.
func otpIssued(w http.ResponseWriter, code *models.OneTimeCode) {
	body := map[string]any{
		"code":      "OTP_SENT",
		"message":   "Verification code sent via WhatsApp",
		"expiresAt": code.ExpiresAt,
	}
	if viper.GetString("app.env") == "development" {
		body["otp"] = code.Code
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

// Register starts the registration flow: validates identity fields and sends
// an OTP to the phone number.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	var req RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}

	if !s.limiter.Allow("otp:" + req.PhoneNumber) {
		SendCodedError(w, NewCodedError(CodeRateLimited, "Too many code requests, try again later"))
		return
	}

	var existingID string
	err := s.db.QueryRowContext(r.Context(), "SELECT id FROM users WHERE phone_number = $1", req.PhoneNumber).Scan(&existingID)
	if err == nil {
		SendCodedError(w, NewCodedError(CodeConflict, "Phone number already registered, login instead"))
		return
	}
	if err != sql.ErrNoRows {
		log.Printf("[AUTH] Registration lookup failed for %s: %v", req.PhoneNumber, err)
		SendErrorResponse(w, CodeUpstream, "An internal error occurred", http.StatusInternalServerError, nil)
		return
	}

	code, err := s.otp.Issue(r.Context(), req.PhoneNumber, strings.ToLower(req.Email), "", req.Name, models.OTPRegister)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	otpIssued(w, code)
}

// VerifyOTP completes registration: consumes the code, creates the account
// with a default cash wallet, and issues the sign-in token.
func (s *AuthService) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !s.decode(w, r, &req) {
		return
	}

	record, err := s.otp.Verify(r.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	if record.Purpose != models.OTPRegister {
		SendCodedError(w, NewCodedError(CodeNotFound, "No registration in progress for this phone number"))
		return
	}

	user := models.User{
		ID:          uuid.NewString(),
		Email:       record.Email,
		Name:        record.Name,
		PhoneNumber: record.PhoneNumber,
		Currency:    "IDR",
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Printf("[AUTH] Transaction start failed for %s: %v", req.PhoneNumber, err)
		SendErrorResponse(w, CodeUpstream, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.Exec(`
		INSERT INTO users (id, email, name, phone_number, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		user.ID, user.Email, user.Name, user.PhoneNumber, user.Currency, now); err != nil {
		log.Printf("[AUTH] User creation failed for %s: %v", req.PhoneNumber, err)
		SendCodedError(w, NewCodedError(CodeConflict, "Account already exists"))
		return
	}

	if _, err := tx.Exec(`
		INSERT INTO wallets (id, user_id, name, kind, balance, currency, version, created_at, updated_at)
		VALUES ($1, $2, 'Cash', $3, 0, 'IDR', 1, $4, $4)`,
		uuid.NewString(), user.ID, models.WalletCash, now); err != nil {
		log.Printf("[AUTH] Default wallet creation failed for %s: %v", req.PhoneNumber, err)
		SendErrorResponse(w, CodeUpstream, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[AUTH] Transaction commit failed for %s: %v", req.PhoneNumber, err)
		SendErrorResponse(w, CodeUpstream, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		SendErrorResponse(w, CodeUpstream, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Registration completed for user %s", user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Code: "OK", Message: "Account created", Token: token, User: user})
}

// LoginPhone starts the login flow for a known phone number.
func (s *AuthService) LoginPhone(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	var req PhoneRequest
	if !s.decode(w, r, &req) {
		return
	}

	if !s.limiter.Allow("otp:" + req.PhoneNumber) {
		SendCodedError(w, NewCodedError(CodeRateLimited, "Too many code requests, try again later"))
		return
	}

	user, err := s.userByPhone(r.Context(), req.PhoneNumber)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	code, err := s.otp.Issue(r.Context(), req.PhoneNumber, user.Email, user.ID, user.Name, models.OTPLogin)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	otpIssued(w, code)
}

// VerifyLoginOTP completes login and issues the sign-in token.
func (s *AuthService) VerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !s.decode(w, r, &req) {
		return
	}

	record, err := s.otp.Verify(r.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	if record.Purpose != models.OTPLogin {
		SendCodedError(w, NewCodedError(CodeNotFound, "No login in progress for this phone number"))
		return
	}

	user, err := s.userByPhone(r.Context(), req.PhoneNumber)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	if _, err := s.db.ExecContext(r.Context(), "UPDATE users SET last_login = $1 WHERE id = $2", time.Now(), user.ID); err != nil {
		log.Printf("[AUTH] Failed to record last login for %s: %v", user.ID, err)
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		SendErrorResponse(w, CodeUpstream, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful for user %s", user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Code: "OK", Message: "Login successful", Token: token, User: *user})
}

// ResendOTP reissues the pending code for a phone number, keeping the
// original purpose and identity fields but resetting code, expiry and
// attempt count.
func (s *AuthService) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !s.decode(w, r, &req) {
		return
	}

	if !s.limiter.Allow("otp:" + req.PhoneNumber) {
		SendCodedError(w, NewCodedError(CodeRateLimited, "Too many code requests, try again later"))
		return
	}

	code, err := s.otp.Reissue(r.Context(), req.PhoneNumber)
	if err != nil {
		SendCodedError(w, err)
		return
	}

	otpIssued(w, code)
}

// Logout blacklists the presented bearer token until its natural expiry.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if token != "" && len(token) > 7 {
		token = token[7:] // strip "Bearer "

		if s.redis != nil {
			key := fmt.Sprintf("blacklist:%s", token)
			expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
			if err := s.redis.Set(r.Context(), key, "1", expiry).Err(); err != nil {
				log.Printf("[AUTH] Failed to blacklist token: %v", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"code": "OK", "message": "Logout successful"})
}

// GetUserAccount returns the authenticated user's profile.
func (s *AuthService) GetUserAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, CodeValidation, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var user models.User
	err := s.db.QueryRowContext(r.Context(), `
		SELECT id, email, name, phone_number, COALESCE(avatar_url, ''), currency, last_login, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.Name, &user.PhoneNumber, &user.AvatarURL, &user.Currency, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			SendCodedError(w, NewCodedError(CodeNotFound, "User not found"))
		} else {
			log.Printf("[AUTH] Failed to fetch user %s: %v", userID, err)
			SendErrorResponse(w, CodeUpstream, "Failed to fetch user details", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (s *AuthService) userByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, phone_number, currency
		FROM users
		WHERE phone_number = $1
	`, phone).Scan(&user.ID, &user.Email, &user.Name, &user.PhoneNumber, &user.Currency)
	if err == sql.ErrNoRows {
		return nil, NewCodedError(CodeNotFound, "Phone number is not registered")
	}
	if err != nil {
		log.Printf("[AUTH] User lookup failed for %s: %v", phone, err)
		return nil, NewCodedError(CodeUpstream, "Failed to look up account")
	}
	return &user, nil
}

func generateJWT(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}
