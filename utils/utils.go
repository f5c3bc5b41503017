package utils

import (
	rndm "math/rand"
	"strings"

	"github.com/google/uuid"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// NewID returns a uuid string used for node/message identifiers.
func NewID() string {
	return uuid.NewString()
}

// NormalizeAddress collapses an address for duplicate detection: lower-case,
// spaces and full-width spaces stripped. Empty addresses normalize to "".
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	addr = strings.ReplaceAll(addr, "　", "")
	addr = strings.ReplaceAll(addr, " ", "")
	return addr
}
