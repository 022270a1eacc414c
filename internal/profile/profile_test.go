package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"madonna", "M"},
		{"", ""},
		{"  ", ""},
		{"grace brewster murray hopper", "GB"},
		{"élodie durand", "ÉD"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Initials(tt.name), "Initials(%q)", tt.name)
	}
}
