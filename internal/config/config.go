package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// ResolverURL is where the client CLI reaches the username
	// resolver service.
	ResolverURL string `env:"RESOLVER_URL" envDefault:"http://localhost:8080/resolve"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	// PasswordResetRedirectURL is embedded in password reset mail.
	PasswordResetRedirectURL string `env:"PASSWORD_RESET_REDIRECT_URL" envDefault:"/reset-password"`

	// SessionTokenPath is where the client CLI persists its access
	// token between runs.
	SessionTokenPath string `env:"SESSION_TOKEN_PATH" envDefault:".session-token"`
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
