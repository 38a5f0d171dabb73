package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalID(t *testing.T) {
	require.Equal(t, "0190d7a4-6f1e-7c3a-9b1e-1b2c3d4e5f60", CanonicalID(" 0190D7A4-6F1E-7C3A-9B1E-1B2C3D4E5F60 "))
	require.Equal(t, "0190d7a4-6f1e-7c3a-9b1e-1b2c3d4e5f60", CanonicalID("urn:uuid:0190d7a4-6f1e-7c3a-9b1e-1b2c3d4e5f60"))
	require.Equal(t, "order_abc", CanonicalID("order_abc"))
}

func TestGenerateReceipt(t *testing.T) {
	a, b := GenerateReceipt(), GenerateReceipt()
	require.True(t, strings.HasPrefix(a, "rcpt_"))
	require.Len(t, a, len("rcpt_")+26)
	require.NotEqual(t, a, b)
}
