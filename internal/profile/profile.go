package profile

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Profile is the application-owned record of user-facing attributes,
// keyed by the owning account's user ID. It is distinct from the
// identity account and may appear slightly after it.
type Profile struct {
	ID        string
	Username  string
	FullName  string
	AvatarURL string
	School    string
	UpdatedAt time.Time
}

// Patch is a partial field set for an upsert. Nil fields are left
// untouched on an existing row.
type Patch struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	School    *string
}

// Initials returns the avatar fallback for a display name: the
// upper-cased first letter of up to the first two words.
func Initials(name string) string {
	var b strings.Builder
	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
