package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestWhatsAppSender_SendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the message to the gateway", func(t *testing.T) {
		var got map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "gateway-token", r.Header.Get("Authorization"))
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		viper.Set("whatsapp.gateway_url", server.URL)
		viper.Set("whatsapp.token", "gateway-token")
		sender := NewWhatsAppSender()

		err := sender.SendOTP(ctx, "+6281234567890", "123456")

		assert.NoError(t, err)
		assert.Equal(t, "+6281234567890", got["target"])
		assert.Contains(t, got["message"], "123456")
	})

	t.Run("gateway rejection surfaces as upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		viper.Set("whatsapp.gateway_url", server.URL)
		sender := NewWhatsAppSender()

		err := sender.SendOTP(ctx, "+6281234567890", "123456")

		coded, ok := AsCoded(err)
		assert.True(t, ok)
		assert.Equal(t, CodeUpstream, coded.Code)
	})

	t.Run("missing gateway is a no-op", func(t *testing.T) {
		viper.Set("whatsapp.gateway_url", "")
		sender := NewWhatsAppSender()

		assert.NoError(t, sender.SendOTP(ctx, "+6281234567890", "123456"))
	})
}
