// Package selfhosted implements the backend.Client authentication
// primitive on infrastructure this repository controls: accounts in
// Postgres with bcrypt hashes, session tokens in Redis, OAuth via the
// provider registry. Hosted deployments swap in the platform SDK
// instead; the session manager cannot tell the difference.
package selfhosted

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/semtetteh/semsterapp/internal/authcore"
	"github.com/semtetteh/semsterapp/internal/db"
	"github.com/semtetteh/semsterapp/internal/logger"
	"github.com/semtetteh/semsterapp/internal/provider"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = authcore.E(authcore.KindAuth, "invalid credentials")
	ErrAlreadyRegistered  = authcore.E(authcore.KindValidation, "account already exists")
	ErrNotAuthenticated   = authcore.E(authcore.KindAuth, "not authenticated")
	ErrInvalidCode        = authcore.E(authcore.KindAuth, "invalid or expired code")
)

const (
	sessionTTL = 24 * time.Hour
	codeTTL    = 15 * time.Minute
	pkceTTL    = 5 * time.Minute
)

type Service struct {
	db        *db.DB
	sessions  SessionStore
	codes     CodeStore
	providers *provider.Registry
	mailer    Mailer
	tokens    TokenCache

	mu        sync.Mutex
	current   *authcore.Session
	listeners map[int]func(*authcore.Session)
	nextID    int
}

func New(
	database *db.DB,
	sessions SessionStore,
	codes CodeStore,
	registry *provider.Registry,
	mailer Mailer,
	tokens TokenCache,
) *Service {
	return &Service{
		db:        database,
		sessions:  sessions,
		codes:     codes,
		providers: registry,
		mailer:    mailer,
		tokens:    tokens,
		listeners: make(map[int]func(*authcore.Session)),
	}
}

// CurrentSession revalidates the cached session against the store so a
// token revoked elsewhere stops working here too. A fresh process has
// no in-memory session yet and falls back to the token cache.
func (s *Service) CurrentSession(ctx context.Context) (*authcore.Session, error) {
	s.mu.Lock()
	cached := s.current
	s.mu.Unlock()

	var token string
	if cached != nil {
		token = cached.AccessToken
	} else {
		loaded, err := s.tokens.Load()
		if err != nil {
			return nil, err
		}
		token = loaded
	}

	if token == "" {
		return nil, nil
	}

	stored, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.Expired() {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		_ = s.tokens.Clear()
		return nil, nil
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()

	copied := *stored
	return &copied, nil
}

func (s *Service) OnSessionChange(fn func(*authcore.Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(sess *authcore.Session) {
	s.mu.Lock()
	fns := make([]func(*authcore.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}

func (s *Service) SignUp(
	ctx context.Context,
	email string,
	password string,
	metadata map[string]string,
) (*authcore.Session, error) {

	if email == "" || password == "" {
		return nil, authcore.E(authcore.KindValidation, "email and password are required")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1)
		)
	`, email).Scan(&exists)

	if err != nil {
		return nil, err
	}

	if exists {
		return nil, ErrAlreadyRegistered
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		return nil, authcore.Wrap(authcore.KindValidation, "password rejected", err)
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	var userID uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (email, password_hash, hash_version, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, email, hash, version, meta).Scan(&userID)

	if err != nil {
		return nil, err
	}

	s.issueVerificationCode(ctx, email)

	return s.startSession(ctx, userID.String())
}

// issueVerificationCode sends the email verification code for a fresh
// account. Best-effort: the account and session are already valid, so
// code or mail trouble is logged and the sign-up proceeds.
func (s *Service) issueVerificationCode(ctx context.Context, email string) {
	code, err := numericCode(6)
	if err == nil {
		err = s.codes.Set(ctx, "otp:"+email, code, codeTTL)
	}
	if err == nil {
		err = s.mailer.SendOTP(ctx, email, code)
	}
	if err != nil {
		logger.Warn("verification code not delivered", map[string]any{
			"email": email,
			"error": err.Error(),
		})
	}
}

func (s *Service) SignInWithPassword(
	ctx context.Context,
	email string,
	password string,
) (*authcore.Session, error) {

	var (
		userID       uuid.UUID
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID, &passwordHash)

	if err != nil {
		// hide whether the account exists or not
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, userID.String())
}

func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.current = nil
	s.mu.Unlock()

	var err error
	if current != nil {
		err = s.sessions.Delete(ctx, current.AccessToken)
	}
	_ = s.tokens.Clear()

	s.notify(nil)
	return err
}

func (s *Service) VerifyOTP(
	ctx context.Context,
	email string,
	code string,
) (*authcore.Session, error) {

	if email == "" || code == "" {
		return nil, authcore.E(authcore.KindValidation, "email and code are required")
	}

	stored, err := s.codes.Get(ctx, "otp:"+email)
	if err != nil {
		return nil, err
	}
	if stored == "" || stored != code {
		return nil, ErrInvalidCode
	}

	_ = s.codes.Delete(ctx, "otp:"+email)

	var userID uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET email_verified = true, updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)
		RETURNING id
	`, email).Scan(&userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	return s.startSession(ctx, userID.String())
}

// RequestPasswordReset issues a reset code for the account. A missing
// account is not reported back; reset requests must not enumerate.
func (s *Service) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	if email == "" {
		return authcore.E(authcore.KindValidation, "email is required")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1)
		)
	`, email).Scan(&exists)

	if err != nil {
		return err
	}

	if !exists {
		logger.Info("password reset for unknown email", map[string]any{
			"email": email,
		})
		return nil
	}

	code, err := numericCode(6)
	if err != nil {
		return err
	}

	if err := s.codes.Set(ctx, "otp:"+email, code, codeTTL); err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, email, code, redirectURL)
}

func (s *Service) UpdatePassword(ctx context.Context, newPassword string) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return ErrNotAuthenticated
	}

	hash, version, err := HashPassword(newPassword)
	if err != nil {
		return authcore.Wrap(authcore.KindValidation, "password rejected", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = $1, hash_version = $2, updated_at = NOW()
		WHERE id = $3
	`, hash, version, current.UserID)

	return err
}

// OAuthSignInURL builds the browser redirect URL for providerName. The
// PKCE verifier is stashed under the state so the callback deployment
// can complete the exchange.
func (s *Service) OAuthSignInURL(ctx context.Context, providerName string) (string, error) {
	p, err := s.providers.Get(providerName)
	if err != nil {
		return "", authcore.Wrap(authcore.KindValidation, "oauth sign-in", err)
	}

	state := provider.GenerateState()
	verifier, challenge := provider.GeneratePKCE()

	if err := s.codes.Set(ctx, "pkce:"+state, verifier, pkceTTL); err != nil {
		return "", err
	}

	return p.AuthCodeURL(state, challenge), nil
}

// ExchangeOAuthCode completes the callback leg: it redeems the PKCE
// verifier stashed under the state, exchanges the authorization code
// and signs the verified identity in, creating the account on first
// social login.
func (s *Service) ExchangeOAuthCode(ctx context.Context, providerName, state, code string) (*authcore.Session, error) {
	if state == "" || code == "" {
		return nil, authcore.E(authcore.KindValidation, "state and code are required")
	}

	p, err := s.providers.Get(providerName)
	if err != nil {
		return nil, authcore.Wrap(authcore.KindValidation, "oauth callback", err)
	}

	verifier, err := s.codes.Get(ctx, "pkce:"+state)
	if err != nil {
		return nil, err
	}
	if verifier == "" {
		return nil, ErrInvalidCode
	}
	// the stash is single-use; a replayed state must not exchange twice
	_ = s.codes.Delete(ctx, "pkce:"+state)

	identity, err := p.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, authcore.Wrap(authcore.KindAuth, "oauth exchange failed", err)
	}

	userID, err := s.accountForIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.startSession(ctx, userID)
}

// accountForIdentity returns the account owning the identity's email,
// creating it on first social login. Created accounts carry a random
// placeholder hash, so password sign-in stays impossible until the
// user sets one.
func (s *Service) accountForIdentity(ctx context.Context, identity *provider.Identity) (string, error) {
	var userID uuid.UUID

	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM accounts WHERE LOWER(email) = LOWER($1)
	`, identity.Email).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	placeholder, err := NewToken()
	if err != nil {
		return "", err
	}
	hash, version, err := HashPassword(placeholder)
	if err != nil {
		return "", err
	}

	meta, err := json.Marshal(map[string]string{"provider": identity.Provider})
	if err != nil {
		return "", err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (email, password_hash, hash_version, email_verified, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, identity.Email, hash, version, identity.EmailVerified, meta).Scan(&userID)

	if err != nil {
		return "", err
	}

	return userID.String(), nil
}

func (s *Service) startSession(ctx context.Context, userID string) (*authcore.Session, error) {
	access, err := NewToken()
	if err != nil {
		return nil, err
	}
	refresh, err := NewToken()
	if err != nil {
		return nil, err
	}

	sess := authcore.Session{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(sessionTTL),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("selfhosted: failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	// best-effort; the session works for this process either way
	if err := s.tokens.Save(sess.AccessToken); err != nil {
		logger.Warn("session token not persisted", map[string]any{
			"error": err.Error(),
		})
	}

	copied := sess
	s.notify(&copied)

	return &sess, nil
}

func numericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
