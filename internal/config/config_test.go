package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billrecon/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(25), cfg.Fetcher.MaxFileSizeMB)
	assert.Equal(t, int64(25*1024*1024), cfg.Fetcher.MaxBytes())
	assert.Equal(t, "gemini", cfg.Parser.Provider)
	assert.Equal(t, "Final Bill,Bill Detail,Pharmacy", cfg.Reconcile.PageTypePriority)
	assert.InDelta(t, 1.0, cfg.Reconcile.TotalTolerance, 1e-9)
	assert.False(t, cfg.S3.Enabled)
	assert.False(t, cfg.DB.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RECON_LOG_LEVEL", "debug")
	t.Setenv("RECON_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECON_RECONCILE_PAGE_TYPE_PRIORITY", "Pharmacy,Final Bill,Bill Detail")
	t.Setenv("RECON_PARSER_SECONDARY_PROVIDER", "openai")
	t.Setenv("RECON_PARSER_SECONDARY_API_KEY", "sk-test")
	t.Setenv("RECON_DB_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "Pharmacy,Final Bill,Bill Detail", cfg.Reconcile.PageTypePriority)
	require.NotNil(t, cfg.Parser.SecondaryConfig())
	assert.Equal(t, "openai", cfg.Parser.SecondaryConfig().Provider)
	assert.Equal(t, "sk-test", cfg.Parser.SecondaryConfig().APIKey)
	assert.True(t, cfg.DB.Enabled)
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RECON_SERVER_PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_ExplicitServerPortWinsOverPORT(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RECON_SERVER_PORT", ":7000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_RejectsNonPositiveMaxFileSize(t *testing.T) {
	t.Setenv("RECON_FETCHER_MAX_FILE_SIZE_MB", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestParserConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.ParserConfig{
		Provider:     "claude",
		APIKey:       "sk-legacy",
		DefaultModel: "claude-sonnet-4-20250514",
		MaxRetries:   3,
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, 3, primary.MaxRetries)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestParserConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.ParserConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.ParserProviderConfig{
			Provider: "gemini",
			APIKey:   "gk-primary",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "gemini", primary.Provider)
	assert.Equal(t, "gk-primary", primary.APIKey)
}

func TestParserConfig_SecondaryAndTertiary_NotConfigured(t *testing.T) {
	cfg := config.ParserConfig{Provider: "claude"}

	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require",
	}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", db.DSN())
}
