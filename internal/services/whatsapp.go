package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/viper"
)

// WhatsAppSender delivers OTP codes through an external WhatsApp gateway.
// The gateway is a collaborator: failures surface to the caller as-is, no
// retries or queuing happen here.
type WhatsAppSender struct {
	client     *http.Client
	gatewayURL string
	token      string
}

func NewWhatsAppSender() *WhatsAppSender {
	viper.SetDefault("whatsapp.gateway_url", "")

	return &WhatsAppSender{
		client:     http.DefaultClient,
		gatewayURL: viper.GetString("whatsapp.gateway_url"),
		token:      viper.GetString("whatsapp.token"),
	}
}

func (s *WhatsAppSender) SendOTP(ctx context.Context, phone, code string) error {
	if s.gatewayURL == "" {
		// No gateway configured (local development); the auth responses echo
		// the code in dev mode so the flow stays testable.
		log.Printf("[WHATSAPP] No gateway configured, skipping delivery to %s", phone)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"target":  phone,
		"message": fmt.Sprintf("Kode verifikasi duitku kamu: %s. Berlaku 5 menit, jangan dibagikan.", code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return NewCodedError(CodeUpstream, "WhatsApp gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[WHATSAPP] Gateway returned %d for %s", resp.StatusCode, phone)
		return NewCodedError(CodeUpstream, "WhatsApp gateway rejected the message")
	}

	return nil
}
