// Command client is a development harness for the session manager. It
// wires the self-hosted backend and the resolver client exactly the
// way an app host would, then runs one auth flow per invocation.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/semtetteh/semsterapp/internal/authcore"
	"github.com/semtetteh/semsterapp/internal/backend/selfhosted"
	"github.com/semtetteh/semsterapp/internal/config"
	"github.com/semtetteh/semsterapp/internal/db"
	"github.com/semtetteh/semsterapp/internal/logger"
	"github.com/semtetteh/semsterapp/internal/nav"
	"github.com/semtetteh/semsterapp/internal/profile"
	"github.com/semtetteh/semsterapp/internal/provider"
	"github.com/semtetteh/semsterapp/internal/provider/google"
	"github.com/semtetteh/semsterapp/internal/redis"
	"github.com/semtetteh/semsterapp/internal/resolver"
	"github.com/semtetteh/semsterapp/internal/session"

	_ "github.com/lib/pq"
)

const usage = `usage: client <command> [args]

commands:
  signup <email> <password> <username> <full name> <school>
  login <email> <password>
  login-username <username> <password>
  reset <email>
  verify <email> <code>
  oauth-url <provider>
  oauth-callback <provider> <state> <code>
  whoami
`

func main() {
	logger.Init()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mgr, cleanup, err := setup(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize client", map[string]any{"error": err.Error()})
	}
	defer cleanup()

	mgr.Start(ctx)
	defer mgr.Close()

	if err := run(ctx, mgr, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v (kind=%s)\n", err, authcore.KindOf(err))
		os.Exit(1)
	}
}

func setup(ctx context.Context, cfg config.Config) (*session.Manager, func(), error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}

	var providers []provider.OAuthProvider
	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, googleProvider)
	}

	database := &db.DB{DB: sqlDB}

	authBackend := selfhosted.New(
		database,
		selfhosted.NewRedisSessions(redisClient.Client),
		selfhosted.NewRedisCodes(redisClient.Client),
		provider.NewRegistry(providers...),
		selfhosted.LogMailer{},
		selfhosted.FileTokenCache{Path: cfg.SessionTokenPath},
	)

	mgr := session.NewManager(
		authBackend,
		profile.NewPostgresStore(database),
		resolver.NewClient(cfg.ResolverURL),
		nav.Nop{},
		session.WithCapabilities(session.Capabilities{BrowserRedirect: true}),
		session.WithPasswordResetRedirect(cfg.PasswordResetRedirectURL),
	)

	return mgr, func() { _ = sqlDB.Close() }, nil
}

func run(ctx context.Context, mgr *session.Manager, command string, args []string) error {
	switch command {
	case "signup":
		if len(args) < 5 {
			return fmt.Errorf("signup needs email, password, username, full name, school")
		}
		mgr.UpdateDraft(func(d *authcore.SignUpDraft) {
			d.Email = args[0]
			d.Password = args[1]
			d.Username = args[2]
			d.FullName = args[3]
			d.School = args[4]
		})
		if err := mgr.SignUp(ctx, args[0], args[1], nil); err != nil {
			return err
		}

	case "login":
		if len(args) < 2 {
			return fmt.Errorf("login needs email and password")
		}
		if err := mgr.SignInWithPassword(ctx, args[0], args[1]); err != nil {
			return err
		}

	case "login-username":
		if len(args) < 2 {
			return fmt.Errorf("login-username needs username and password")
		}
		if err := mgr.SignInWithUsername(ctx, args[0], args[1]); err != nil {
			return err
		}

	case "reset":
		if len(args) < 1 {
			return fmt.Errorf("reset needs an email")
		}
		return mgr.RequestPasswordReset(ctx, args[0])

	case "verify":
		if len(args) < 2 {
			return fmt.Errorf("verify needs email and code")
		}
		if err := mgr.VerifyOTP(ctx, args[0], args[1]); err != nil {
			return err
		}

	case "oauth-url":
		if len(args) < 1 {
			return fmt.Errorf("oauth-url needs a provider name")
		}
		url, err := mgr.SignInWithProvider(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil

	case "oauth-callback":
		if len(args) < 3 {
			return fmt.Errorf("oauth-callback needs provider, state and code")
		}
		if err := mgr.CompleteProviderSignIn(ctx, args[0], args[1], args[2]); err != nil {
			return err
		}

	case "whoami":
		// nothing to do; Start already reloaded the persisted session

	default:
		return fmt.Errorf("unknown command %q", command)
	}

	printIdentity(mgr)
	return nil
}

func printIdentity(mgr *session.Manager) {
	sess := mgr.Session()
	if sess == nil {
		fmt.Println("signed out")
		return
	}
	fmt.Printf("signed in as %s (expires %s)\n", sess.UserID, sess.ExpiresAt.Format(time.RFC3339))

	// resolution runs in the background; give it a moment
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p := mgr.Profile(); p != nil {
			fmt.Printf("profile: %s (%s) [%s] at %s\n",
				p.FullName, p.Username, profile.Initials(p.FullName), p.School)
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	fmt.Println("profile: not yet visible")
}
