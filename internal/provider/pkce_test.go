package provider

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePKCE(t *testing.T) {
	verifier, challenge := GeneratePKCE()

	assert.NotEmpty(t, verifier)

	hash := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), challenge)
}

func TestGenerateStateIsUnique(t *testing.T) {
	assert.NotEqual(t, GenerateState(), GenerateState())
}
