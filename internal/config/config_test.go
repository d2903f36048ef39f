package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Address())
	assert.False(t, cfg.Auth.Enabled)
	assert.Empty(t, cfg.Auth.Secret, "no weak secret is injected")
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SQLITE_PATH", "/tmp/inventra.db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LEDGER_AMOUNT_POLICY", " TRUST ")
	t.Setenv("DASHBOARD_CACHE_TTL_SECONDS", "5")
	t.Setenv("ROLLUP_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "/tmp/inventra.db", cfg.Store.SQLitePath)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, AmountPolicyTrust, cfg.Ledger.AmountPolicy)
	assert.Equal(t, 5*time.Second, cfg.DashboardCacheTTL())
	assert.False(t, cfg.Rollup.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "7070"
  readTimeout: 3s
auth:
  enabled: true
  secret: file-secret-file-secret-file-secret
  users:
    - username: owner
      passwordHash: "$2a$10$abcdefghijklmnopqrstuv"
      role: admin
ledger:
  amountPolicy: enforce
`), 0o600))
	t.Setenv("PORT", "6060")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.HTTP.Port, "env wins over file")
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout, "unset keys keep defaults")
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "owner", cfg.Auth.Users[0].Username)
	assert.Equal(t, RoleAdmin, cfg.Auth.Users[0].Role)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown policy": func(c *Config) { c.Ledger.AmountPolicy = "guess" },
		"negative ttl":   func(c *Config) { c.Dashboard.CacheTTLSeconds = -1 },
		"bad schedule":   func(c *Config) { c.Rollup.Schedule = "every day" },
		"short secret": func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.Secret = "short"
			c.Auth.Users = []User{{Username: "a", PasswordHash: "h", Role: RoleAdmin}}
		},
		"no users": func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.Secret = "0123456789abcdef0123456789abcdef"
		},
		"unknown role": func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.Secret = "0123456789abcdef0123456789abcdef"
			c.Auth.Users = []User{{Username: "a", PasswordHash: "h", Role: "owner"}}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateIgnoresScheduleWhenRollupDisabled(t *testing.T) {
	cfg := Default()
	cfg.Rollup.Enabled = false
	cfg.Rollup.Schedule = "nonsense"
	assert.NoError(t, cfg.Validate())
}
