package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{"bare digits", "makan 50000", 50000},
		{"dot separated thousands", "makan 50.000", 50000},
		{"comma separated thousands", "belanja 1,500,000", 1500000},
		{"rb suffix", "makan 50rb", 50000},
		{"ribu suffix", "bayar 25 ribu", 25000},
		{"k suffix", "kopi 15k", 15000},
		{"jt suffix", "gaji 5jt", 5000000},
		{"juta suffix", "bonus 2 juta", 2000000},
		{"m suffix", "terima 3m", 3000000},
		{"rp prefix", "bayar rp 75000", 75000},
		{"rp glued to digits", "bayar rp75000", 75000},
		{"suffix wins over bare", "transfer 100rb dari cash", 100000},
		{"million wins over thousand", "dapat 1jt dan 50rb", 1000000},
		{"first match only", "makan 50000 dan 20000", 50000},
		{"no amount", "makan siang enak", 0},
		{"empty text", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAmount(tt.text))
		})
	}
}

func TestExtractAmountSuffixBoundary(t *testing.T) {
	// "m" and "k" are suffixes only at a word boundary. Words that merely
	// start with those letters must not trigger the multiplier.
	assert.Equal(t, int64(50000), ExtractAmount("makan 50000"))
	assert.Equal(t, int64(15000), ExtractAmount("kopi 15000"))
}

func TestParseDigitGroup(t *testing.T) {
	assert.Equal(t, int64(50000), parseDigitGroup("50.000"))
	assert.Equal(t, int64(1500000), parseDigitGroup("1,500,000"))
	assert.Equal(t, int64(42), parseDigitGroup("42"))
}
