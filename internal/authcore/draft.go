package authcore

// SignUpDraft is the client-local staging record accumulated across the
// multi-step registration wizard. It lives in memory only and is
// discarded after a successful submission or abandonment.
type SignUpDraft struct {
	School    string
	Username  string
	FullName  string
	AvatarURL string
	Email     string
	Password  string
}

// Metadata renders the draft as the metadata mapping attached to the
// backend sign-up call. Empty fields are omitted.
func (d *SignUpDraft) Metadata() map[string]string {
	m := make(map[string]string)
	if d.School != "" {
		m["school"] = d.School
	}
	if d.Username != "" {
		m["username"] = d.Username
	}
	if d.FullName != "" {
		m["full_name"] = d.FullName
	}
	if d.AvatarURL != "" {
		m["avatar_url"] = d.AvatarURL
	}
	return m
}
