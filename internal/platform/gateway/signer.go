package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
)

// Signer computes and checks gateway signatures. Payment proofs are signed
// with the API key secret, webhook bodies with the webhook secret.
type Signer struct {
	keySecret     []byte
	webhookSecret []byte
}

func NewSigner(cfg *cfgpkg.Config) *Signer {
	return &Signer{
		keySecret:     []byte(cfg.Gateway.KeySecret),
		webhookSecret: []byte(cfg.Gateway.WebhookSecret),
	}
}

// SignPayment returns hex(HMAC-SHA256(keySecret, orderID + "|" + paymentID)).
func (s *Signer) SignPayment(orderID, paymentID string) string {
	return sign(s.keySecret, []byte(orderID+"|"+paymentID))
}

// VerifyPayment compares signature with the expected payment signature in
// constant time.
func (s *Signer) VerifyPayment(orderID, paymentID, signature string) bool {
	if len(s.keySecret) == 0 {
		return false
	}
	return equalHex(s.SignPayment(orderID, paymentID), signature)
}

func (s *Signer) SignWebhook(body []byte) string {
	return sign(s.webhookSecret, body)
}

func (s *Signer) VerifyWebhook(body []byte, signature string) bool {
	if len(s.webhookSecret) == 0 {
		return false
	}
	return equalHex(s.SignWebhook(body), signature)
}

func sign(secret, msg []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}

func equalHex(expected, got string) bool {
	want, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	have, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(got)))
	if err != nil {
		return false
	}
	return hmac.Equal(want, have)
}
