package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duitku/backend/internal/models"
	"github.com/duitku/backend/internal/parser"
	"github.com/duitku/backend/internal/services"
)

type fakeLinks struct {
	active        *models.ChatLink
	activeErr     error
	consumed      []string
	consumeLink   *models.ChatLink
	consumeErr    error
	deactivated   []int64
	deactivateErr error
}

func (f *fakeLinks) ConsumeLinkCode(ctx context.Context, code string, chatID int64, handle string) (*models.ChatLink, error) {
	f.consumed = append(f.consumed, code)
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.consumeLink, nil
}

func (f *fakeLinks) Deactivate(ctx context.Context, chatID int64) error {
	f.deactivated = append(f.deactivated, chatID)
	return f.deactivateErr
}

func (f *fakeLinks) ActiveLink(ctx context.Context, chatID int64) (*models.ChatLink, error) {
	return f.active, f.activeErr
}

type fakeLedger struct {
	recorded  []parser.ParsedCommand
	receipt   *services.ChatReceipt
	recordErr error
	wallets   []models.Wallet
	entries   []models.LedgerEntry
}

func (f *fakeLedger) RecordChatCommand(ctx context.Context, userID string, cmd parser.ParsedCommand) (*services.ChatReceipt, error) {
	f.recorded = append(f.recorded, cmd)
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return f.receipt, nil
}

func (f *fakeLedger) Wallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	return f.wallets, nil
}

func (f *fakeLedger) RecentEntries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	return f.entries, nil
}

func linkedRouter(ledger *fakeLedger) (*ChatRouter, *fakeLinks) {
	links := &fakeLinks{active: &models.ChatLink{ID: "l1", UserID: "user-1", ChatID: 777, Active: true}}
	return &ChatRouter{links: links, ledger: ledger}, links
}

func TestChatRouter_Commands(t *testing.T) {
	ctx := context.Background()

	t.Run("help works without a link", func(t *testing.T) {
		rt := &ChatRouter{links: &fakeLinks{}, ledger: &fakeLedger{}}

		assert.Equal(t, helpText, rt.Respond(ctx, 777, "andi", "/help"))
		assert.Equal(t, helpText, rt.Respond(ctx, 777, "andi", "/start"))
	})

	t.Run("start deep link consumes the code", func(t *testing.T) {
		links := &fakeLinks{consumeLink: &models.ChatLink{UserID: "user-1"}}
		rt := &ChatRouter{links: links, ledger: &fakeLedger{}}

		reply := rt.Respond(ctx, 777, "andi", "/start abcd2345")

		assert.Equal(t, []string{"ABCD2345"}, links.consumed)
		assert.Contains(t, reply, "terhubung")
	})

	t.Run("link without a code", func(t *testing.T) {
		rt := &ChatRouter{links: &fakeLinks{}, ledger: &fakeLedger{}}

		assert.Equal(t, "Format: /link KODE", rt.Respond(ctx, 777, "andi", "/link"))
	})

	t.Run("link conflict echoes the coded message", func(t *testing.T) {
		links := &fakeLinks{consumeErr: services.NewCodedError(services.CodeConflict, "This chat is linked to another account; /unlink first")}
		rt := &ChatRouter{links: links, ledger: &fakeLedger{}}

		reply := rt.Respond(ctx, 777, "andi", "/link ABCD2345")

		assert.Equal(t, "This chat is linked to another account; /unlink first", reply)
	})

	t.Run("unlink when nothing is linked", func(t *testing.T) {
		links := &fakeLinks{deactivateErr: services.NewCodedError(services.CodeNotFound, "This chat is not linked to any account")}
		rt := &ChatRouter{links: links, ledger: &fakeLedger{}}

		reply := rt.Respond(ctx, 777, "andi", "/unlink")

		assert.Equal(t, "This chat is not linked to any account", reply)
	})

	t.Run("unlinked chat is guarded", func(t *testing.T) {
		ledger := &fakeLedger{}
		rt := &ChatRouter{links: &fakeLinks{}, ledger: ledger}

		reply := rt.Respond(ctx, 777, "andi", "Makan 50rb dari cash")

		assert.Equal(t, notLinkedText, reply)
		assert.Empty(t, ledger.recorded)
	})

	t.Run("balance lists wallets with total", func(t *testing.T) {
		ledger := &fakeLedger{wallets: []models.Wallet{
			{Name: "Cash", Balance: 150000},
			{Name: "BCA", Balance: 2500000},
		}}
		rt, _ := linkedRouter(ledger)

		reply := rt.Respond(ctx, 777, "andi", "/saldo")

		assert.Contains(t, reply, "Cash: Rp150.000")
		assert.Contains(t, reply, "BCA: Rp2.500.000")
		assert.Contains(t, reply, "Total: Rp2.650.000")
	})

	t.Run("history when empty", func(t *testing.T) {
		rt, _ := linkedRouter(&fakeLedger{})

		assert.Equal(t, "Belum ada transaksi tercatat.", rt.Respond(ctx, 777, "andi", "/riwayat"))
	})
}

func TestChatRouter_Transactions(t *testing.T) {
	ctx := context.Background()

	t.Run("valid expense records and confirms", func(t *testing.T) {
		ledger := &fakeLedger{receipt: &services.ChatReceipt{
			Wallet:       &models.Wallet{Name: "Cash", Balance: 100000},
			BalanceMoved: true,
		}}
		rt, _ := linkedRouter(ledger)

		reply := rt.Respond(ctx, 777, "andi", "Makan 50rb dari cash")

		assert.Len(t, ledger.recorded, 1)
		cmd := ledger.recorded[0]
		assert.Equal(t, parser.TxExpense, cmd.Type)
		assert.Equal(t, int64(50000), cmd.Amount)
		assert.Equal(t, "cash", cmd.SourceAccount)

		assert.Contains(t, reply, "Tercatat: Pengeluaran")
		assert.Contains(t, reply, "Nominal: Rp50.000")
		assert.Contains(t, reply, "Keterangan: Makan")
		assert.Contains(t, reply, "Dompet: Cash (saldo Rp100.000)")
	})

	t.Run("invalid text echoes the parse error", func(t *testing.T) {
		ledger := &fakeLedger{}
		rt, _ := linkedRouter(ledger)

		reply := rt.Respond(ctx, 777, "andi", "makan siang enak")

		assert.Contains(t, reply, "Nominal tidak ditemukan")
		assert.Empty(t, ledger.recorded)
	})

	t.Run("record only transfer carries a note", func(t *testing.T) {
		ledger := &fakeLedger{receipt: &services.ChatReceipt{BalanceMoved: false}}
		rt, _ := linkedRouter(ledger)

		reply := rt.Respond(ctx, 777, "andi", "Transfer 100rb dari dompetku ke celengan")

		assert.Contains(t, reply, "Tercatat: Transfer")
		assert.Contains(t, reply, "tanpa perubahan saldo")
	})
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Rp0"},
		{500, "Rp500"},
		{50000, "Rp50.000"},
		{1500000, "Rp1.500.000"},
		{-25000, "-Rp25.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatRupiah(tt.amount))
		})
	}
}
