package provider

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/semtetteh/semsterapp/internal/utils"
)

// GenerateState returns an unguessable OAuth state parameter. The
// caller decides where to persist it for the callback leg.
func GenerateState() string {
	return utils.RandomString(32)
}

// GeneratePKCE returns a fresh code verifier and its S256 challenge.
func GeneratePKCE() (verifier string, challenge string) {
	verifier = utils.RandomString(32)

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	return verifier, challenge
}
