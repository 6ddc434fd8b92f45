package identikit

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven configuration surface: the signing
// secret, token TTL and the OAuth client settings. Endpoint URLs are
// overridable because the exact provider URLs are deployment configuration
// (and tests point them at local servers).
type Config struct {
	SecretKey   string        `env:"IDENTIKIT_SECRET_KEY"`
	TokenIssuer string        `env:"IDENTIKIT_TOKEN_ISSUER" envDefault:"identikit"`
	TokenTTL    time.Duration `env:"IDENTIKIT_TOKEN_TTL" envDefault:"15m"`

	GoogleClientID     string        `env:"IDENTIKIT_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"IDENTIKIT_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string        `env:"IDENTIKIT_GOOGLE_REDIRECT_URI"`
	GoogleAuthURL      string        `env:"IDENTIKIT_GOOGLE_AUTH_URL"`
	GoogleTokenURL     string        `env:"IDENTIKIT_GOOGLE_TOKEN_URL"`
	GoogleUserInfoURL  string        `env:"IDENTIKIT_GOOGLE_USER_INFO_URL"`
	OAuthTimeout       time.Duration `env:"IDENTIKIT_OAUTH_TIMEOUT" envDefault:"10s"`

	StoragePath string `env:"IDENTIKIT_STORAGE_PATH" envDefault:"./data"`
}

// LoadConfig reads configuration from the environment
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("IDENTIKIT_SECRET_KEY is required")
	}
	return &cfg, nil
}
