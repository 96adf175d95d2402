package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvertFromIDR(t *testing.T) {
	t.Run("idr is identity", func(t *testing.T) {
		got, err := ConvertFromIDR(1500000, "IDR")
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(1500000)))
	})

	t.Run("usd conversion rounds to two places", func(t *testing.T) {
		got, err := ConvertFromIDR(1580000, "USD")
		assert.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(100)))
	})

	t.Run("fractional result", func(t *testing.T) {
		got, err := ConvertFromIDR(50000, "USD")
		assert.NoError(t, err)
		assert.Equal(t, "3.16", got.StringFixed(2))
	})

	t.Run("unknown currency", func(t *testing.T) {
		_, err := ConvertFromIDR(1000, "XYZ")
		assert.Error(t, err)
	})
}

func TestSupportedCurrencies(t *testing.T) {
	codes := SupportedCurrencies()
	assert.Contains(t, codes, "IDR")
	assert.Contains(t, codes, "USD")
	assert.Len(t, codes, len(idrRates))
}
