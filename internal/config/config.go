package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Identity provider backends.
const (
	ProviderMemory   = "memory"
	ProviderFirebase = "firebase"
)

// Config holds all configuration for the application.
type Config struct {
	Addr          string        `env:"APP_ADDR" envDefault:":8080"`
	BaseURL       string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	SessionSecret string        `env:"SESSION_SECRET"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"debug"`
	RateLimit     float64       `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	Timeout       time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	IdentityProvider string `env:"IDENTITY_PROVIDER" envDefault:"memory"`
	Firebase         FirebaseConfig
	Google           OAuthClient `envPrefix:"GOOGLE_"`
	GitHub           OAuthClient `envPrefix:"GITHUB_"`

	Tracing TracingConfig `envPrefix:"TRACING_"`
}

// TracingConfig controls Zipkin export of auth attempt event spans.
type TracingConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"portcullis"`
	ZipkinURL   string `env:"ZIPKIN_URL" envDefault:"http://localhost:9411/api/v2/spans"`
}

// FirebaseConfig configures the Firebase Authentication backend.
type FirebaseConfig struct {
	APIKey          string `env:"FIREBASE_API_KEY"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	VerifyIDTokens  bool   `env:"FIREBASE_VERIFY_ID_TOKENS" envDefault:"false"`
}

// OAuthClient is a registered OAuth application at a federated provider.
type OAuthClient struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

// Enabled reports whether both halves of the client registration are set.
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// New loads configuration from a .env file (if present) and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}

	switch c.IdentityProvider {
	case ProviderMemory:
	case ProviderFirebase:
		if c.Firebase.APIKey == "" {
			errs = append(errs, errors.New("FIREBASE_API_KEY is required when IDENTITY_PROVIDER=firebase"))
		}
		if c.Firebase.VerifyIDTokens && c.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required when FIREBASE_VERIFY_ID_TOKENS is set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider))
	}

	if c.Tracing.Enabled && c.Tracing.ZipkinURL == "" {
		errs = append(errs, errors.New("TRACING_ZIPKIN_URL is required when TRACING_ENABLED is set"))
	}

	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}
