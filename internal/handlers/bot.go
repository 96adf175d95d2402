package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/duitku/backend/internal/models"
	"github.com/duitku/backend/internal/parser"
	"github.com/duitku/backend/internal/services"
)

const helpText = `Halo! Aku bot pencatat keuangan duitku.

Perintah:
/link KODE - hubungkan chat ini dengan akunmu (kode dari halaman Pengaturan)
/unlink - putuskan hubungan akun
/balance atau /saldo - saldo semua dompet
/history atau /riwayat - 5 transaksi terakhir

Atau ketik transaksi langsung, contoh:
"Makan 50rb dari cash"
"Gaji 5jt ke bank"
"Transfer 100rb dari cash ke bank"`

const notLinkedText = `Chat ini belum terhubung ke akun duitku.
Buka Pengaturan di aplikasi, buat kode penghubung, lalu kirim /link KODE di sini.`

// linkStore and ledgerStore are the slices of LinkService and LedgerService
// the router needs; tests swap in fakes.
type linkStore interface {
	ConsumeLinkCode(ctx context.Context, code string, chatID int64, handle string) (*models.ChatLink, error)
	Deactivate(ctx context.Context, chatID int64) error
	ActiveLink(ctx context.Context, chatID int64) (*models.ChatLink, error)
}

type ledgerStore interface {
	RecordChatCommand(ctx context.Context, userID string, cmd parser.ParsedCommand) (*services.ChatReceipt, error)
	Wallets(ctx context.Context, userID string) ([]models.Wallet, error)
	RecentEntries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
}

// ChatRouter turns one inbound chat message into one reply. It is stateless
// across messages; the only cross-message state is the persisted link record.
type ChatRouter struct {
	links  linkStore
	ledger ledgerStore
}

func NewChatRouter(links *services.LinkService, ledger *services.LedgerService) *ChatRouter {
	return &ChatRouter{links: links, ledger: ledger}
}

// Respond routes a message: exact commands first, then the link guard, then
// the natural-language parser. A message equal to a command never reaches the
// parser.
func (rt *ChatRouter) Respond(ctx context.Context, chatID int64, handle, text string) string {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	command := ""
	if len(fields) > 0 {
		command = strings.ToLower(fields[0])
	}

	switch command {
	case "/start":
		// Deep links (t.me/bot?start=CODE) arrive as "/start CODE".
		if len(fields) > 1 {
			return rt.handleLink(ctx, chatID, handle, fields[1])
		}
		return helpText
	case "/help":
		return helpText
	case "/link":
		if len(fields) < 2 {
			return "Format: /link KODE"
		}
		return rt.handleLink(ctx, chatID, handle, fields[1])
	case "/unlink":
		if err := rt.links.Deactivate(ctx, chatID); err != nil {
			return errorReply(err)
		}
		return "Chat ini sudah diputus dari akunmu. Sampai jumpa!"
	}

	link, err := rt.links.ActiveLink(ctx, chatID)
	if err != nil {
		log.Printf("[BOT] Link lookup failed for chat %d: %v", chatID, err)
		return "Lagi ada gangguan, coba lagi sebentar ya."
	}
	if link == nil {
		return notLinkedText
	}

	switch command {
	case "/balance", "/saldo":
		return rt.handleBalance(ctx, link.UserID)
	case "/history", "/riwayat":
		return rt.handleHistory(ctx, link.UserID)
	}

	return rt.handleTransaction(ctx, link.UserID, text)
}

func (rt *ChatRouter) handleLink(ctx context.Context, chatID int64, handle, code string) string {
	link, err := rt.links.ConsumeLinkCode(ctx, strings.ToUpper(code), chatID, handle)
	if err != nil {
		return errorReply(err)
	}
	log.Printf("[BOT] Chat %d linked to user %s", chatID, link.UserID)
	return "Berhasil! Chat ini sekarang terhubung ke akunmu.\nKetik transaksi langsung atau /help untuk bantuan."
}

func (rt *ChatRouter) handleBalance(ctx context.Context, userID string) string {
	wallets, err := rt.ledger.Wallets(ctx, userID)
	if err != nil {
		log.Printf("[BOT] Wallet listing failed for user %s: %v", userID, err)
		return "Gagal mengambil saldo, coba lagi nanti."
	}
	if len(wallets) == 0 {
		return "Belum ada dompet. Buat dulu di aplikasi ya."
	}

	var b strings.Builder
	b.WriteString("Saldo dompetmu:\n")
	var total int64
	for _, w := range wallets {
		total += w.Balance
		fmt.Fprintf(&b, "- %s: %s\n", w.Name, formatRupiah(w.Balance))
	}
	fmt.Fprintf(&b, "Total: %s", formatRupiah(total))
	return b.String()
}

func (rt *ChatRouter) handleHistory(ctx context.Context, userID string) string {
	entries, err := rt.ledger.RecentEntries(ctx, userID, 5)
	if err != nil {
		log.Printf("[BOT] History failed for user %s: %v", userID, err)
		return "Gagal mengambil riwayat, coba lagi nanti."
	}
	if len(entries) == 0 {
		return "Belum ada transaksi tercatat."
	}

	var b strings.Builder
	b.WriteString("5 transaksi terakhir:\n")
	for _, e := range entries {
		sign := "-"
		if e.Type == string(parser.TxIncome) {
			sign = "+"
		} else if e.Type == string(parser.TxTransfer) {
			sign = "~"
		}
		fmt.Fprintf(&b, "%s %s %s (%s)\n", sign, formatRupiah(e.Amount), e.Description, e.Category)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (rt *ChatRouter) handleTransaction(ctx context.Context, userID, text string) string {
	cmd := parser.Parse(text)
	if !cmd.Valid {
		return cmd.ErrorReason
	}

	receipt, err := rt.ledger.RecordChatCommand(ctx, userID, cmd)
	if err != nil {
		log.Printf("[BOT] Ledger write failed for user %s: %v", userID, err)
		return "Gagal menyimpan transaksi, coba lagi nanti."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tercatat: %s\n", cmd.Type.DisplayName())
	fmt.Fprintf(&b, "Nominal: %s\n", formatRupiah(cmd.Amount))
	fmt.Fprintf(&b, "Keterangan: %s\n", cmd.Description)
	fmt.Fprintf(&b, "Kategori: %s", cmd.CategoryHint)
	if receipt.Wallet != nil {
		fmt.Fprintf(&b, "\nDompet: %s (saldo %s)", receipt.Wallet.Name, formatRupiah(receipt.Wallet.Balance))
	}
	if cmd.Type == parser.TxTransfer && !receipt.BalanceMoved {
		b.WriteString("\nCatatan: transfer dicatat tanpa perubahan saldo karena dompet asal/tujuan tidak dikenali.")
	}
	return b.String()
}

func errorReply(err error) string {
	if coded, ok := services.AsCoded(err); ok {
		return coded.Message
	}
	return "Lagi ada gangguan, coba lagi sebentar ya."
}

// formatRupiah renders an amount like 1500000 as "Rp1.500.000".
func formatRupiah(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	if negative {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}

// BotHandler runs the Telegram long-poll loop and feeds messages to the
// router.
type BotHandler struct {
	bot    *tgbotapi.BotAPI
	router *ChatRouter
}

func NewBotHandler(token string, router *ChatRouter) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &BotHandler{bot: bot, router: router}, nil
}

// Username returns the bot account name, used for deep links.
func (h *BotHandler) Username() string {
	return h.bot.Self.UserName
}

// Start blocks on the update channel until ctx is canceled.
func (h *BotHandler) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	log.Printf("[BOT] Listening for updates as @%s", h.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			msg := update.Message
			reply := h.router.Respond(ctx, msg.Chat.ID, msg.From.UserName, msg.Text)
			if _, err := h.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
				log.Printf("[BOT] Failed to send reply to chat %d: %v", msg.Chat.ID, err)
			}
		}
	}
}
