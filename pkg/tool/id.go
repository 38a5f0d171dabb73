package tool

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateReceipt returns a sortable, URL-safe reference for gateway orders.
func GenerateReceipt() string {
	return "rcpt_" + ulid.Make().String()
}

// CanonicalID normalizes an identifier crossing the storage or transport
// boundary. All id comparisons use the canonical form.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
