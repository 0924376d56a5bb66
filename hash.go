package miztl

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the hex SHA-256 of text. Text is hashed as is: cache
// keys are exact source strings, so whitespace is significant.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// ShortHash returns the first 12 hex characters of HashText.
func ShortHash(text string) string {
	return HashText(text)[:12]
}
