// Package config holds operator-level configuration for an anonpdf
// installation: data directory, audit signing key, default pattern file,
// seed names. Set via env vars (ANONPDF_*) or a config file
// (anonpdf.config.yaml). Per-run options (input, output, extra names) come
// from CLI flags, not from here.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the ANONPDF prefix
// (e.g. "signing_key" → ANONPDF_SIGNING_KEY) and to a YAML field in
// anonpdf.config.yaml.
const (
	KeyDataDir        = "data_dir"
	KeySigningKey     = "signing_key"
	KeyPatternFile    = "pattern_file"
	KeyRedactLabel    = "redact_label"
	KeyNames          = "names"
	KeyCustomPatterns = "custom_patterns"
)

// DefaultRedactLabel is the visual placeholder burned into redacted regions.
const DefaultRedactLabel = "[REDACTED]"

// Config holds resolved operator-level configuration for an anonpdf process.
type Config struct {
	DataDir        string   // Base directory for state (~/.anonpdf)
	SigningKey     string   // HMAC-SHA256 key for audit record signing (≥32 bytes)
	PatternFile    string   // Optional recognizer YAML overlaying the built-ins
	RedactLabel    string   // Replacement label for redacted regions
	Names          []string // Names to seed the known-name registry
	CustomPatterns []string // Extra case-insensitive regexes to redact

	usingDefaultSigningKey bool
}

// UsingDefaultSigningKey returns true if the audit signing key fell back to
// a generated per-machine default. Commands should warn when this is the case.
func (c *Config) UsingDefaultSigningKey() bool {
	return c.usingDefaultSigningKey
}

// AuditDBPath returns the full path to the audit SQLite database.
func (c *Config) AuditDBPath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

// WarnIfDefaultKey logs a warning when the signing key is not explicitly set.
func (c *Config) WarnIfDefaultKey() {
	if c.usingDefaultSigningKey {
		log.Warn().Msg("Using generated default ANONPDF_SIGNING_KEY; set via env var or config file if audit records must be verifiable across machines")
	}
}

func init() {
	viper.SetEnvPrefix("ANONPDF")
	viper.AutomaticEnv()
	viper.SetDefault(KeyRedactLabel, DefaultRedactLabel)
}

// Load reads configuration from Viper (which merges env vars, config file,
// and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:        resolveDataDir(),
		SigningKey:     viper.GetString(KeySigningKey),
		PatternFile:    viper.GetString(KeyPatternFile),
		RedactLabel:    viper.GetString(KeyRedactLabel),
		Names:          viper.GetStringSlice(KeyNames),
		CustomPatterns: viper.GetStringSlice(KeyCustomPatterns),
	}

	if cfg.SigningKey == "" {
		cfg.SigningKey = deriveDefaultKey(cfg.DataDir, "audit-signing")
		cfg.usingDefaultSigningKey = true
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".anonpdf"
	}
	return filepath.Join(home, ".anonpdf")
}

// deriveDefaultKey produces a deterministic 32-byte fallback key from the
// data directory path and a salt. Not cryptographically strong; it exists
// so the audit trail works out of the box while still being signed with a
// per-machine-unique key.
func deriveDefaultKey(dataDir, salt string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("anonpdf:%s:%s", dataDir, salt)))
	return hex.EncodeToString(h[:])
}

func (c *Config) validate() error {
	if len(c.SigningKey) < 32 {
		return fmt.Errorf("signing_key must be at least 32 bytes (got %d); set ANONPDF_SIGNING_KEY", len(c.SigningKey))
	}
	if c.RedactLabel == "" {
		return fmt.Errorf("redact_label must not be empty")
	}
	return nil
}
