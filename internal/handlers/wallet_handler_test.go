package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/duitku/backend/internal/models"
	"github.com/duitku/backend/internal/services"
)

func newWalletTestHandler(t *testing.T) (*WalletHandler, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)

	redisClient, _ := redismock.NewClientMock()
	ledger := services.NewLedgerService(db)
	links := services.NewLinkService(db, redisClient)

	return NewWalletHandler(ledger, links), dbMock, func() { db.Close() }
}

func authedRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return r.WithContext(context.WithValue(r.Context(), "userID", "user-1"))
}

func TestWalletHandler_ListWallets(t *testing.T) {
	handler, mock, closeDB := newWalletTestHandler(t)
	defer closeDB()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns the user's wallets", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, kind, balance").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "kind", "balance", "currency", "version", "created_at", "updated_at"}).
				AddRow("w1", "user-1", "Cash", "cash", int64(150000), "IDR", 1, now, now))

		w := httptest.NewRecorder()
		handler.ListWallets(w, authedRequest("GET", "/api/v1/wallets"))

		assert.Equal(t, http.StatusOK, w.Code)

		var wallets []models.Wallet
		json.Unmarshal(w.Body.Bytes(), &wallets)
		assert.Len(t, wallets, 1)
		assert.Equal(t, int64(150000), wallets[0].Balance)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, kind, balance").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "kind", "balance", "currency", "version", "created_at", "updated_at"}))

		w := httptest.NewRecorder()
		handler.ListWallets(w, authedRequest("GET", "/api/v1/wallets"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListWallets(w, httptest.NewRequest("GET", "/api/v1/wallets", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestWalletHandler_WalletSummary(t *testing.T) {
	handler, mock, closeDB := newWalletTestHandler(t)
	defer closeDB()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("converts totals to the requested currency", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, kind, balance").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "kind", "balance", "currency", "version", "created_at", "updated_at"}).
				AddRow("w1", "user-1", "Cash", "cash", int64(1580000), "IDR", 1, now, now))

		w := httptest.NewRecorder()
		handler.WalletSummary(w, authedRequest("GET", "/api/v1/wallets/summary?currency=USD"))

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		json.Unmarshal(w.Body.Bytes(), &body)
		assert.Equal(t, "USD", body["currency"])
		assert.Equal(t, float64(1580000), body["totalIDR"])
	})

	t.Run("unsupported currency", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, kind, balance").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "kind", "balance", "currency", "version", "created_at", "updated_at"}).
				AddRow("w1", "user-1", "Cash", "cash", int64(1000), "IDR", 1, now, now))

		w := httptest.NewRecorder()
		handler.WalletSummary(w, authedRequest("GET", "/api/v1/wallets/summary?currency=XYZ"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWalletHandler_RecentTransactions(t *testing.T) {
	handler, mock, closeDB := newWalletTestHandler(t)
	defer closeDB()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entryColumns := []string{"id", "user_id", "type", "amount", "description", "category", "wallet_id", "counter_wallet_id", "origin", "occurred_at", "created_at"}

	t.Run("defaults to five entries", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, type, amount").
			WithArgs("user-1", 5).
			WillReturnRows(sqlmock.NewRows(entryColumns).
				AddRow("e1", "user-1", "expense", int64(50000), "Makan", "food", "w1", "", "chat", now, now))

		w := httptest.NewRecorder()
		handler.RecentTransactions(w, authedRequest("GET", "/api/v1/transactions/recent"))

		assert.Equal(t, http.StatusOK, w.Code)

		var entries []models.LedgerEntry
		json.Unmarshal(w.Body.Bytes(), &entries)
		assert.Len(t, entries, 1)
	})

	t.Run("honors a custom limit", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, type, amount").
			WithArgs("user-1", 10).
			WillReturnRows(sqlmock.NewRows(entryColumns))

		w := httptest.NewRecorder()
		handler.RecentTransactions(w, authedRequest("GET", "/api/v1/transactions/recent?limit=10"))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ignores an out of range limit", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, type, amount").
			WithArgs("user-1", 5).
			WillReturnRows(sqlmock.NewRows(entryColumns))

		w := httptest.NewRecorder()
		handler.RecentTransactions(w, authedRequest("GET", "/api/v1/transactions/recent?limit=500"))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestWalletHandler_Unlink(t *testing.T) {
	handler, mock, closeDB := newWalletTestHandler(t)
	defer closeDB()

	t.Run("retires the active link", func(t *testing.T) {
		mock.ExpectExec("UPDATE chat_links").
			WithArgs(sqlmock.AnyArg(), "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		handler.Unlink(w, authedRequest("DELETE", "/api/v1/chat/link"))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("nothing linked is not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE chat_links").
			WillReturnResult(sqlmock.NewResult(0, 0))

		w := httptest.NewRecorder()
		handler.Unlink(w, authedRequest("DELETE", "/api/v1/chat/link"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
