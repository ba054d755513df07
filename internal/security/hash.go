package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashResetToken hashes a raw password-reset token for at-rest storage so a
// database leak alone cannot redeem outstanding tokens.
func HashResetToken(raw, pepper string) string {
	h := sha256.Sum256([]byte(raw + ":" + pepper))
	return hex.EncodeToString(h[:])
}
