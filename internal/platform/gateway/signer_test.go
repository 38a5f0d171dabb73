package gateway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
)

func TestSigner_Payment(t *testing.T) {
	s := NewSigner(&cfgpkg.Config{Gateway: cfgpkg.GatewayConfig{KeySecret: "key_secret"}})
	sig := s.SignPayment("order_1", "pay_1")
	require.Len(t, sig, 64)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{name: "valid", orderID: "order_1", paymentID: "pay_1", signature: sig, want: true},
		{name: "upper case hex", orderID: "order_1", paymentID: "pay_1", signature: strings.ToUpper(sig), want: true},
		{name: "other payment", orderID: "order_1", paymentID: "pay_2", signature: sig},
		{name: "swapped ids", orderID: "pay_1", paymentID: "order_1", signature: sig},
		{name: "not hex", orderID: "order_1", paymentID: "pay_1", signature: "zz"},
		{name: "empty", orderID: "order_1", paymentID: "pay_1", signature: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.VerifyPayment(tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestSigner_KnownVector(t *testing.T) {
	s := NewSigner(&cfgpkg.Config{Gateway: cfgpkg.GatewayConfig{KeySecret: "key"}})
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	require.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		sign(s.keySecret, []byte("The quick brown fox jumps over the lazy dog")))
}

func TestSigner_Webhook(t *testing.T) {
	s := NewSigner(&cfgpkg.Config{Gateway: cfgpkg.GatewayConfig{WebhookSecret: "whsec"}})
	body := []byte(`{"event":"payment.captured"}`)
	require.True(t, s.VerifyWebhook(body, s.SignWebhook(body)))
	require.False(t, s.VerifyWebhook([]byte(`{}`), s.SignWebhook(body)))

	empty := NewSigner(&cfgpkg.Config{})
	require.False(t, empty.VerifyWebhook(body, empty.SignWebhook(body)))
	require.False(t, empty.VerifyPayment("o", "p", empty.SignPayment("o", "p")))
}
