package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/duitku/backend/internal/models"
	"github.com/duitku/backend/internal/services"
)

// WalletHandler serves the dashboard's wallet and chat-link endpoints.
type WalletHandler struct {
	ledger *services.LedgerService
	links  *services.LinkService
}

func NewWalletHandler(ledger *services.LedgerService, links *services.LinkService) *WalletHandler {
	return &WalletHandler{ledger: ledger, links: links}
}

func userIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		services.SendErrorResponse(w, services.CodeValidation, "Unauthorized", http.StatusUnauthorized, nil)
		return "", false
	}
	return userID, true
}

// ListWallets returns all wallets of the authenticated user.
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	wallets, err := h.ledger.Wallets(r.Context(), userID)
	if err != nil {
		log.Printf("[WALLET] Failed to list wallets for %s: %v", userID, err)
		services.SendErrorResponse(w, services.CodeUpstream, "Failed to list wallets", http.StatusInternalServerError, nil)
		return
	}
	if wallets == nil {
		wallets = []models.Wallet{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wallets)
}

// WalletSummary returns per-wallet balances plus a total, converted with the
// static rate table when a ?currency= parameter is given.
func (h *WalletHandler) WalletSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "IDR"
	}

	wallets, err := h.ledger.Wallets(r.Context(), userID)
	if err != nil {
		log.Printf("[WALLET] Failed to list wallets for %s: %v", userID, err)
		services.SendErrorResponse(w, services.CodeUpstream, "Failed to list wallets", http.StatusInternalServerError, nil)
		return
	}

	var totalIDR int64
	items := make([]map[string]any, 0, len(wallets))
	for _, wallet := range wallets {
		totalIDR += wallet.Balance
		converted, err := models.ConvertFromIDR(wallet.Balance, currency)
		if err != nil {
			services.SendErrorResponse(w, services.CodeValidation, "Unsupported currency", http.StatusBadRequest, nil)
			return
		}
		items = append(items, map[string]any{
			"id":        wallet.ID,
			"name":      wallet.Name,
			"kind":      wallet.Kind,
			"balance":   wallet.Balance,
			"converted": converted,
		})
	}

	totalConverted, _ := models.ConvertFromIDR(totalIDR, currency)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"currency":       currency,
		"wallets":        items,
		"totalIDR":       totalIDR,
		"totalConverted": totalConverted,
		"rates":          models.SupportedCurrencies(),
	})
}

// RecentTransactions returns the newest ledger entries (?limit=, default 5).
func (h *WalletHandler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	entries, err := h.ledger.RecentEntries(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[WALLET] Failed to list transactions for %s: %v", userID, err)
		services.SendErrorResponse(w, services.CodeUpstream, "Failed to list transactions", http.StatusInternalServerError, nil)
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// CreateLinkCode issues a fresh Telegram linking code for the settings page.
func (h *WalletHandler) CreateLinkCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	code, err := h.links.CreateLinkCode(r.Context(), userID)
	if err != nil {
		services.SendCodedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":      code.Code,
		"deepLink":  code.DeepLink,
		"qrPng":     base64.StdEncoding.EncodeToString(code.QRPNG),
		"expiresAt": code.ExpiresAt,
	})
}

// Unlink deactivates the user's active chat link.
func (h *WalletHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.links.DeactivateForUser(r.Context(), userID); err != nil {
		services.SendCodedError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"code": "OK", "message": "Chat link removed"})
}
