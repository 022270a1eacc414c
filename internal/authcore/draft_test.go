package authcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraftMetadataOmitsEmptyFields(t *testing.T) {
	d := SignUpDraft{
		Username: "ada",
		School:   "Analytical U",
	}

	assert.Equal(t, map[string]string{
		"username": "ada",
		"school":   "Analytical U",
	}, d.Metadata())

	assert.Empty(t, (&SignUpDraft{}).Metadata())
}
