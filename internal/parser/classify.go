package parser

import "strings"

// TxType is the transaction type produced by the classifier.
type TxType string

const (
	TxIncome   TxType = "income"
	TxExpense  TxType = "expense"
	TxTransfer TxType = "transfer"
)

// Keyword lists are Indonesian-first with English synonyms. Priority is
// transfer > income > expense: a message carrying both a transfer and an
// income keyword classifies as transfer.
var (
	transferKeywords = []string{"transfer", "pindah", "mindahin", "move"}
	incomeKeywords   = []string{"gaji", "pemasukan", "pendapatan", "terima", "dapat", "bonus", "thr", "masuk", "salary", "income", "untung"}
	expenseKeywords  = []string{"beli", "bayar", "belanja", "jajan", "pengeluaran", "keluar", "expense", "spend"}
)

// Classify returns the transaction type for lowercased text. Expense is the
// default when no keyword matches.
func Classify(text string) TxType {
	if containsAny(text, transferKeywords) {
		return TxTransfer
	}
	if containsAny(text, incomeKeywords) {
		return TxIncome
	}
	return TxExpense
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// DisplayName is the human-readable fallback used when a parsed command has
// no description left after stripping.
func (t TxType) DisplayName() string {
	switch t {
	case TxIncome:
		return "Pemasukan"
	case TxTransfer:
		return "Transfer"
	default:
		return "Pengeluaran"
	}
}
