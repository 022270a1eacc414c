package selfhosted

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewToken generates a cryptographically secure session token.
// 32 bytes = 256 bits of entropy.
func NewToken() (string, error) {

	const size = 32 // 256 bits

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("selfhosted: failed to generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
