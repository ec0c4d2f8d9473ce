package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/nfrund/portcullis/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Portcullis v"+version+"\n", out.String())
}

func TestPrintSummary(t *testing.T) {
	cfg := &config.Config{
		Addr:             ":8080",
		BaseURL:          "http://localhost:8080",
		SessionSecret:    "never-printed-session-secret",
		IdentityProvider: config.ProviderMemory,
		Timeout:          10 * time.Second,
		RateLimit:        10,
		GitHub:           config.OAuthClient{ClientID: "id", ClientSecret: "gh-secret"},
	}
	summary := summarize(cfg)
	assert.Equal(t, map[string]bool{"google": false, "github": true}, summary.Federated)

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printSummary(&out, summary, "table"))
		assert.Contains(t, out.String(), "GitHub sign-in")
		assert.NotContains(t, out.String(), "never-printed-session-secret")
		assert.NotContains(t, out.String(), "gh-secret")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printSummary(&out, summary, "json"))
		var decoded configSummary
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, summary, decoded)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, printSummary(&bytes.Buffer{}, summary, "yaml"))
	})
}
