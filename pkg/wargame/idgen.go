package wargame

import (
	"crypto/rand"
	"fmt"
)

// newID generates a short random identifier for entities the caller
// does not supply a natural key for (orders, alliances-in-waiting,
// wars). Mirrors internal/logger.NewRequestID's charset/fallback idiom.
func newID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	const length = 12
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s-fallback", prefix)
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return prefix + "-" + string(b)
}
