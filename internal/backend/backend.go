// Package backend defines the authentication primitive the session
// manager is built on. Credential storage, token issuance and password
// verification all live behind this interface; the manager only
// sequences calls and caches results.
package backend

import (
	"context"

	"github.com/semtetteh/semsterapp/internal/authcore"
)

type Client interface {
	// CurrentSession returns the session the platform has persisted,
	// or nil when no one is signed in.
	CurrentSession(ctx context.Context) (*authcore.Session, error)

	// OnSessionChange registers fn for every session transition
	// (login, logout, token refresh). fn receives nil on logout.
	// The returned func unsubscribes; it must be safe to call once.
	OnSessionChange(fn func(*authcore.Session)) (unsubscribe func())

	// SignUp creates an account with the metadata attached and signs
	// the new user in.
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*authcore.Session, error)

	SignInWithPassword(ctx context.Context, email, password string) (*authcore.Session, error)

	SignOut(ctx context.Context) error

	// VerifyOTP redeems a one-time code delivered out of band.
	VerifyOTP(ctx context.Context, email, code string) (*authcore.Session, error)

	// RequestPasswordReset sends a reset code; redirectURL is embedded
	// in the outbound mail.
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error

	// UpdatePassword changes the signed-in user's password.
	UpdatePassword(ctx context.Context, newPassword string) error

	// OAuthSignInURL builds the browser redirect URL for a registered
	// OAuth provider.
	OAuthSignInURL(ctx context.Context, providerName string) (string, error)

	// ExchangeOAuthCode completes the callback leg of a social
	// sign-in: it redeems the verifier stashed under the state,
	// exchanges the authorization code and signs the identity in.
	ExchangeOAuthCode(ctx context.Context, providerName, state, code string) (*authcore.Session, error)
}
