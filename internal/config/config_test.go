package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"INSIGHT_SERVER_PORT", "PORT",
	"INSIGHT_SECURITY_ALLOWED_ORIGINS", "ALLOWED_ORIGINS",
	"INSIGHT_LOGGING_LEVEL", "LEVEL",
	"INSIGHT_LOGGING_OUTPUT", "OUTPUT",
	"INSIGHT_ANALYSIS_ANALYSIS_TIMEOUT", "ANALYSIS_TIMEOUT",
	"INSIGHT_STORAGE_SUPABASE_URL", "SUPABASE_URL",
	"INSIGHT_STORAGE_SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_SERVICE_ROLE_KEY",
	"INSIGHT_STORAGE_SUPABASE_BUCKET", "SUPABASE_BUCKET",
	"INSIGHT_STORAGE_SUPABASE_SIGNED_URL_TTL_SECONDS", "SUPABASE_SIGNED_URL_TTL_SECONDS",
	"INSIGHT_PAYMENTS_STRIPE_SECRET_KEY", "STRIPE_SECRET_KEY",
	"INSIGHT_HISTORY_HISTORY_USERNAME", "HISTORY_USERNAME",
	"INSIGHT_HISTORY_HISTORY_PASSWORD", "HISTORY_PASSWORD",
	"INSIGHT_DATABASE_TRANSACTION_LOG", "TRANSACTION_LOG",
	"INSIGHT_CONFIG",
}

// isolateEnv clears every managed variable for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedEnv {
		key := key
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, val) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 25*time.Second, cfg.Analysis.Timeout)
				assert.Equal(t, 7200, cfg.Storage.SignedURLTTLSecs)
				assert.Equal(t, 2*time.Hour, cfg.Storage.SignedURLTTL())
				assert.Equal(t, int64(500), cfg.Payments.AmountCents)
				assert.Equal(t, "usd", cfg.Payments.Currency)
				assert.Equal(t, "sqlite", cfg.Database.Backend)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.False(t, cfg.Storage.Enabled())
				assert.False(t, cfg.Payments.Enabled())
				assert.False(t, cfg.History.Enabled())
				assert.False(t, cfg.Sheets.Enabled())
			},
		},
		{
			name: "unprefixed deployment variables",
			env: map[string]string{
				"PORT":                      "9191",
				"SUPABASE_URL":              "https://proj.supabase.co/",
				"SUPABASE_SERVICE_ROLE_KEY": "service-key",
				"SUPABASE_BUCKET":           "artifacts",
				"STRIPE_SECRET_KEY":         "sk_test_1",
				"HISTORY_USERNAME":          "admin",
				"HISTORY_PASSWORD":          "secret",
				"ALLOWED_ORIGINS":           "https://a.example, https://b.example",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.True(t, cfg.Storage.Enabled())
				assert.Equal(t, "https://proj.supabase.co", cfg.Storage.URL)
				assert.True(t, cfg.Payments.Enabled())
				assert.True(t, cfg.History.Enabled())
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "prefixed variable wins over bare one",
			env: map[string]string{
				"PORT":                "9191",
				"INSIGHT_SERVER_PORT": "7070",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"INSIGHT_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "partial storage credentials",
			env:     map[string]string{"SUPABASE_URL": "https://proj.supabase.co"},
			wantErr: true,
		},
		{
			name:    "unknown transaction log backend",
			env:     map[string]string{"TRANSACTION_LOG": "postgres"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"INSIGHT_LOGGING_LEVEL": "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "insight.yaml")
	content := `
server:
  port: 8181
security:
  allowed_origins: ["https://dash.example"]
storage:
  url: https://file.supabase.co
  service_role_key: file-key
  bucket: file-bucket
payments:
  secret_key: sk_file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("INSIGHT_CONFIG", path)
	t.Setenv("SUPABASE_BUCKET", "env-bucket")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, []string{"https://dash.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "https://file.supabase.co", cfg.Storage.URL)
	assert.Equal(t, "env-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "sk_file", cfg.Payments.SecretKey)
}

func TestLoadFromFileErrors(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	t.Setenv("INSIGHT_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "History!A:J", cfg.Sheets.Range)
}

func TestHistoryEnabledWithHash(t *testing.T) {
	h := HistoryConfig{Username: "admin", PasswordHash: "$2a$10$abc"}
	assert.True(t, h.Enabled())
	assert.False(t, HistoryConfig{Username: "admin"}.Enabled())
}
