// Package session holds the session manager: the one service object a
// client host constructs at startup and injects wherever auth state is
// needed. It caches the backend's session, reconciles the user profile
// after every auth transition, and owns no credential logic itself.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/semtetteh/semsterapp/internal/authcore"
	"github.com/semtetteh/semsterapp/internal/backend"
	"github.com/semtetteh/semsterapp/internal/logger"
	"github.com/semtetteh/semsterapp/internal/nav"
	"github.com/semtetteh/semsterapp/internal/profile"

	"github.com/sethvargo/go-retry"
)

// EmailResolver translates a username into the account email. The real
// implementation is an HTTP call to the resolver service; the client
// deliberately cannot do this lookup itself.
type EmailResolver interface {
	ResolveEmail(ctx context.Context, username, password string) (string, error)
}

// Capabilities describes what the hosting platform can do. Social
// sign-in needs a browser redirect; hosts without one get a capability
// error instead of a broken flow.
type Capabilities struct {
	BrowserRedirect bool
}

const (
	defaultRetryDelay = time.Second
	defaultMaxRetries = 3
)

type Manager struct {
	backend  backend.Client
	profiles profile.Store
	resolver EmailResolver
	nav      nav.Navigator
	caps     Capabilities

	retryDelay       time.Duration
	maxRetries       uint64
	resetRedirectURL string

	mu          sync.Mutex
	session     *authcore.Session
	profile     *profile.Profile
	draft       authcore.SignUpDraft
	fetchUserID string
	fetchCancel context.CancelFunc
	unsubscribe func()
	rootCtx     context.Context
	rootCancel  context.CancelFunc
}

type Option func(*Manager)

// WithRetryDelay overrides the fixed delay between profile fetch
// attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Manager) { m.retryDelay = d }
}

// WithMaxRetries overrides the retry budget per target user.
func WithMaxRetries(n uint64) Option {
	return func(m *Manager) { m.maxRetries = n }
}

func WithCapabilities(c Capabilities) Option {
	return func(m *Manager) { m.caps = c }
}

// WithPasswordResetRedirect sets the URL embedded in reset mail.
func WithPasswordResetRedirect(url string) Option {
	return func(m *Manager) { m.resetRedirectURL = url }
}

func NewManager(
	b backend.Client,
	profiles profile.Store,
	resolver EmailResolver,
	navigator nav.Navigator,
	opts ...Option,
) *Manager {
	m := &Manager{
		backend:    b,
		profiles:   profiles,
		resolver:   resolver,
		nav:        navigator,
		retryDelay: defaultRetryDelay,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads whatever session the backend has persisted, kicks off
// profile resolution for it, and subscribes to session transitions.
// A load failure is logged and treated as signed-out; it never fails
// the host's startup.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.rootCtx, m.rootCancel = context.WithCancel(context.Background())
	m.mu.Unlock()

	sess, err := m.backend.CurrentSession(ctx)
	if err != nil {
		logger.Warn("persisted session load failed", map[string]any{
			"error": err.Error(),
		})
	}

	if sess != nil {
		m.setSession(sess)
		m.resolveProfile(sess.UserID)
	}

	unsubscribe := m.backend.OnSessionChange(m.onSessionChange)

	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()
}

// Close unsubscribes from session transitions and cancels any pending
// profile resolution. A retry firing after Close is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	if m.rootCancel != nil {
		m.rootCancel()
	}
	m.rootCtx = nil
	m.rootCancel = nil
	m.fetchCancel = nil
	m.fetchUserID = ""
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Session returns the cached session, or nil when signed out.
func (m *Manager) Session() *authcore.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Profile returns the cached profile, or nil when not yet resolved.
func (m *Manager) Profile() *profile.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// Draft returns a copy of the staged sign-up draft.
func (m *Manager) Draft() authcore.SignUpDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// UpdateDraft mutates the staged sign-up draft in place. Each wizard
// step calls this with the fields it collected.
func (m *Manager) UpdateDraft(fn func(*authcore.SignUpDraft)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.draft)
}

func (m *Manager) ClearDraft() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = authcore.SignUpDraft{}
}

func (m *Manager) setSession(s *authcore.Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}

func (m *Manager) onSessionChange(s *authcore.Session) {
	if s == nil {
		m.mu.Lock()
		m.session = nil
		m.profile = nil
		m.fetchUserID = ""
		if m.fetchCancel != nil {
			m.fetchCancel()
			m.fetchCancel = nil
		}
		m.mu.Unlock()
		return
	}

	m.setSession(s)
	m.resolveProfile(s.UserID)
}

// resolveProfile fetches the profile row for userID in the background:
// one attempt plus at most maxRetries more, a fixed delay apart. Only
// a missing row is retried; the row is created by a backend trigger
// shortly after sign-up and may not be visible yet. Any other error,
// or exhaustion, abandons the fetch and leaves the cache as it was;
// the session itself is still valid.
//
// Retargeting cancels the pending fetch, so a stale budget never
// counts against the new user.
func (m *Manager) resolveProfile(userID string) {
	m.mu.Lock()
	if m.rootCtx == nil {
		m.mu.Unlock()
		return
	}
	if m.fetchCancel != nil {
		m.fetchCancel()
	}
	ctx, cancel := context.WithCancel(m.rootCtx)
	m.fetchCancel = cancel
	m.fetchUserID = userID
	m.mu.Unlock()

	go func() {
		defer cancel()

		backoff := retry.WithMaxRetries(m.maxRetries, retry.NewConstant(m.retryDelay))

		var resolved *profile.Profile
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			p, err := m.profiles.GetByID(ctx, userID)
			if errors.Is(err, profile.ErrNotFound) {
				return retry.RetryableError(err)
			}
			if err != nil {
				return err
			}
			resolved = p
			return nil
		})

		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("profile resolution abandoned", map[string]any{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
			return
		}

		m.mu.Lock()
		if m.fetchUserID == userID && ctx.Err() == nil {
			m.profile = resolved
		}
		m.mu.Unlock()
	}()
}

// SignUp creates the account and immediately provisions the profile
// row from metadata (or the staged draft when metadata is nil). The
// backend trigger that would create the row can race the first read,
// so the client writes it too. A provisioning failure is the sign-up
// failure even though the account now exists; there is no rollback.
func (m *Manager) SignUp(ctx context.Context, email, password string, metadata map[string]string) error {
	if email == "" || password == "" {
		return authcore.E(authcore.KindValidation, "email and password are required")
	}

	if metadata == nil {
		m.mu.Lock()
		metadata = m.draft.Metadata()
		m.mu.Unlock()
	}

	sess, err := m.backend.SignUp(ctx, email, password, metadata)
	if err != nil {
		return err
	}

	m.setSession(sess)

	if err := m.profiles.Upsert(ctx, sess.UserID, patchFromMetadata(metadata), time.Now().UTC()); err != nil {
		return authcore.Wrap(authcore.KindTransientStore, "profile provisioning failed", err)
	}

	m.ClearDraft()
	m.resolveProfile(sess.UserID)
	return nil
}

// SignInWithPassword is a pass-through to the backend; its error comes
// back verbatim. Success caches the session, starts profile resolution
// and fires the navigation side effect.
func (m *Manager) SignInWithPassword(ctx context.Context, email, password string) error {
	sess, err := m.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}

	m.setSession(sess)
	m.resolveProfile(sess.UserID)
	m.nav.Go(nav.RouteHome)
	return nil
}

// SignInWithUsername resolves the username to an email through the
// resolver service, then signs in with email+password. Every failure
// on the way collapses to ErrInvalidLogin.
func (m *Manager) SignInWithUsername(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return authcore.ErrInvalidLogin
	}

	if _, err := m.profiles.GetByUsername(ctx, username); err != nil {
		return authcore.ErrInvalidLogin
	}

	email, err := m.resolver.ResolveEmail(ctx, username, password)
	if err != nil {
		return authcore.ErrInvalidLogin
	}

	if err := m.SignInWithPassword(ctx, email, password); err != nil {
		return authcore.ErrInvalidLogin
	}

	return nil
}

// SignOut clears local state and navigates to the landing route even
// when the backend call fails; the error still comes back to the
// caller.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.backend.SignOut(ctx)
	if err != nil {
		logger.Warn("sign out reported error", map[string]any{
			"error": err.Error(),
		})
	}

	m.mu.Lock()
	m.session = nil
	m.profile = nil
	m.fetchUserID = ""
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}
	m.mu.Unlock()

	m.nav.Go(nav.RouteLanding)
	return err
}

func (m *Manager) VerifyOTP(ctx context.Context, email, code string) error {
	sess, err := m.backend.VerifyOTP(ctx, email, code)
	if err != nil {
		return err
	}

	m.setSession(sess)
	m.resolveProfile(sess.UserID)
	return nil
}

func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.backend.RequestPasswordReset(ctx, email, m.resetRedirectURL)
}

func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	return m.backend.UpdatePassword(ctx, newPassword)
}

// SignInWithProvider starts a social sign-in. Platforms without
// browser redirect capability get a capability error naming the
// provider; the backend is never contacted.
func (m *Manager) SignInWithProvider(ctx context.Context, providerName string) (string, error) {
	if !m.caps.BrowserRedirect {
		return "", authcore.E(
			authcore.KindCapability,
			fmt.Sprintf("%s sign-in is not supported on this platform", providerName),
		)
	}

	return m.backend.OAuthSignInURL(ctx, providerName)
}

// CompleteProviderSignIn finishes the callback leg of a social
// sign-in. Success behaves like a password sign-in: the session is
// cached, profile resolution starts and the host navigates home.
func (m *Manager) CompleteProviderSignIn(ctx context.Context, providerName, state, code string) error {
	sess, err := m.backend.ExchangeOAuthCode(ctx, providerName, state, code)
	if err != nil {
		return err
	}

	m.setSession(sess)
	m.resolveProfile(sess.UserID)
	m.nav.Go(nav.RouteHome)
	return nil
}

// UpdateProfile upserts the given partial field set with a fresh
// timestamp, then re-resolves the profile. The re-fetch happens even
// though the upsert carried the values; the store may normalize or
// reject fields silently.
func (m *Manager) UpdateProfile(ctx context.Context, patch profile.Patch) error {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	if sess == nil {
		return authcore.E(authcore.KindAuth, "not authenticated")
	}

	if err := m.profiles.Upsert(ctx, sess.UserID, patch, time.Now().UTC()); err != nil {
		return authcore.Wrap(authcore.KindTransientStore, "profile update failed", err)
	}

	m.resolveProfile(sess.UserID)
	return nil
}

func patchFromMetadata(metadata map[string]string) profile.Patch {
	var p profile.Patch
	if v, ok := metadata["username"]; ok {
		p.Username = &v
	}
	if v, ok := metadata["full_name"]; ok {
		p.FullName = &v
	}
	if v, ok := metadata["avatar_url"]; ok {
		p.AvatarURL = &v
	}
	if v, ok := metadata["school"]; ok {
		p.School = &v
	}
	return p
}
