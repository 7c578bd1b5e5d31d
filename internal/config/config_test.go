package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	viper.SetEnvPrefix("ANONPDF")
	viper.AutomaticEnv()
	viper.SetDefault(KeyRedactLabel, DefaultRedactLabel)
	t.Cleanup(func() { viper.Reset() })
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, DefaultRedactLabel, cfg.RedactLabel)
	assert.True(t, cfg.UsingDefaultSigningKey())
	assert.GreaterOrEqual(t, len(cfg.SigningKey), 32)
	assert.Empty(t, cfg.Names)
	assert.Empty(t, cfg.CustomPatterns)
}

func TestLoadFromEnv(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("ANONPDF_DATA_DIR", dir)
	t.Setenv("ANONPDF_SIGNING_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("ANONPDF_REDACT_LABEL", "[GONE]")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.SigningKey)
	assert.Equal(t, "[GONE]", cfg.RedactLabel)
	assert.False(t, cfg.UsingDefaultSigningKey())
}

func TestLoadRejectsShortKey(t *testing.T) {
	resetViper(t)
	t.Setenv("ANONPDF_SIGNING_KEY", "tiny")

	_, err := Load()
	assert.Error(t, err)
}

func TestDerivedKeyIsDeterministic(t *testing.T) {
	a := deriveDefaultKey("/data", "audit-signing")
	b := deriveDefaultKey("/data", "audit-signing")
	c := deriveDefaultKey("/other", "audit-signing")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestAuditDBPath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/anonpdf"}
	assert.Equal(t, filepath.Join("/var/lib/anonpdf", "audit.db"), cfg.AuditDBPath())
}

func TestEnsureDataDir(t *testing.T) {
	cfg := &Config{DataDir: filepath.Join(t.TempDir(), "nested", "state")}
	require.NoError(t, cfg.EnsureDataDir())

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
