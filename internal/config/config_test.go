package config_test

import (
	"testing"
	"time"

	"github.com/nfrund/portcullis/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "a-very-secret-key-for-testing-!")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, config.ProviderMemory, cfg.IdentityProvider)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, float64(10), cfg.RateLimit)
	assert.False(t, cfg.Google.Enabled())
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "portcullis", cfg.Tracing.ServiceName)
}

func TestParseOAuthClients(t *testing.T) {
	t.Setenv("SESSION_SECRET", "a-very-secret-key-for-testing-!")
	t.Setenv("GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "gh-secret")
	t.Setenv("GOOGLE_CLIENT_ID", "only-half")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.True(t, cfg.GitHub.Enabled())
	assert.Equal(t, "gh-id", cfg.GitHub.ClientID)
	assert.False(t, cfg.Google.Enabled())
}

func TestValidate(t *testing.T) {
	t.Run("requires a session secret", func(t *testing.T) {
		cfg := &config.Config{IdentityProvider: config.ProviderMemory, RateLimit: 10}
		assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET is required")
	})

	t.Run("firebase needs an api key", func(t *testing.T) {
		cfg := &config.Config{
			SessionSecret:    "a-very-secret-key-for-testing-!",
			IdentityProvider: config.ProviderFirebase,
			RateLimit:        10,
		}
		assert.ErrorContains(t, cfg.Validate(), "FIREBASE_API_KEY")
	})

	t.Run("token verification needs a project", func(t *testing.T) {
		cfg := &config.Config{
			SessionSecret:    "a-very-secret-key-for-testing-!",
			IdentityProvider: config.ProviderFirebase,
			RateLimit:        10,
			Firebase:         config.FirebaseConfig{APIKey: "key", VerifyIDTokens: true},
		}
		assert.ErrorContains(t, cfg.Validate(), "FIREBASE_PROJECT_ID")
	})

	t.Run("rejects unknown providers", func(t *testing.T) {
		cfg := &config.Config{
			SessionSecret:    "a-very-secret-key-for-testing-!",
			IdentityProvider: "ldap",
			RateLimit:        10,
		}
		assert.ErrorContains(t, cfg.Validate(), `unknown IDENTITY_PROVIDER "ldap"`)
	})

	t.Run("tracing needs a collector", func(t *testing.T) {
		cfg := &config.Config{
			SessionSecret:    "a-very-secret-key-for-testing-!",
			IdentityProvider: config.ProviderMemory,
			RateLimit:        10,
			Tracing:          config.TracingConfig{Enabled: true},
		}
		assert.ErrorContains(t, cfg.Validate(), "TRACING_ZIPKIN_URL")
	})
}
