// Package parser turns free-form chat text like "Makan 50rb dari cash" into a
// structured transaction command. Everything here is pure: no I/O, no shared
// state, safe for concurrent use.
package parser

import "strings"

const (
	msgCommandText = `Ketik transaksi dalam bahasa biasa, contoh: "Makan 50rb dari cash". Ketik /help untuk daftar perintah.`
	msgNoAmount    = `Nominal tidak ditemukan. Contoh: "Makan 50rb", "Gaji 5jt ke bank", "Transfer 100rb dari cash ke bank".`
)

// ParsedCommand is the result of parsing one inbound chat message. It is
// never persisted; the chat router consumes it immediately.
type ParsedCommand struct {
	Type               TxType
	Amount             int64 // smallest currency unit
	Description        string
	SourceAccount      string // normalized tag, empty if absent
	DestinationAccount string
	CategoryHint       string
	Valid              bool
	ErrorReason        string
}

// Parse composes the classifier, amount lexer, account extractor and category
// hinter into one parse result. Empty text and slash commands are rejected
// here so they never masquerade as transactions.
func Parse(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		return ParsedCommand{Valid: false, ErrorReason: msgCommandText}
	}

	lower := strings.ToLower(trimmed)
	txType := Classify(lower)

	amount := ExtractAmount(lower)
	if amount <= 0 {
		return ParsedCommand{Type: txType, Valid: false, ErrorReason: msgNoAmount}
	}

	source, destination := ExtractAccounts(lower)

	description := BuildDescription(trimmed)
	if description == "" {
		description = txType.DisplayName()
	}

	category := HintCategory(lower)
	if category == "" {
		category = "others"
	}

	return ParsedCommand{
		Type:               txType,
		Amount:             amount,
		Description:        description,
		SourceAccount:      source,
		DestinationAccount: destination,
		CategoryHint:       category,
		Valid:              true,
	}
}
