package authcore

import "time"

// Session is the provider-issued proof of an authenticated identity.
// The backend owns and mutates it; everything else holds a read-only
// cached copy.
type Session struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
