package parser

import "strings"

// categoryTable is an ordered list of (keyword, tag) pairs. First match in
// declaration order wins, so more specific keywords belong near the top.
var categoryTable = []struct {
	keyword string
	tag     string
}{
	{"gaji", "salary"},
	{"salary", "salary"},
	{"bonus", "bonus"},
	{"thr", "bonus"},
	{"makan", "food"},
	{"kopi", "food"},
	{"jajan", "food"},
	{"sarapan", "food"},
	{"warung", "food"},
	{"resto", "food"},
	{"food", "food"},
	{"ojek", "transport"},
	{"gojek", "transport"},
	{"grab", "transport"},
	{"bensin", "transport"},
	{"parkir", "transport"},
	{"tol", "transport"},
	{"taksi", "transport"},
	{"transport", "transport"},
	{"belanja", "shopping"},
	{"shopee", "shopping"},
	{"tokopedia", "shopping"},
	{"beli", "shopping"},
	{"listrik", "bills"},
	{"pulsa", "bills"},
	{"internet", "bills"},
	{"wifi", "bills"},
	{"pdam", "bills"},
	{"bpjs", "bills"},
	{"tagihan", "bills"},
	{"obat", "health"},
	{"dokter", "health"},
	{"apotek", "health"},
	{"vitamin", "health"},
	{"nonton", "entertainment"},
	{"film", "entertainment"},
	{"game", "entertainment"},
	{"netflix", "entertainment"},
	{"spotify", "entertainment"},
	{"buku", "education"},
	{"kursus", "education"},
	{"sekolah", "education"},
	{"kuliah", "education"},
}

// HintCategory maps description text to a category tag by keyword
// containment. Returns the empty string when nothing matches; the caller
// defaults the category in that case.
func HintCategory(text string) string {
	for _, entry := range categoryTable {
		if strings.Contains(text, entry.keyword) {
			return entry.tag
		}
	}
	return ""
}
