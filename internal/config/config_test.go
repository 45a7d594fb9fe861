package config

import (
	"os"
	"path/filepath"
	"testing"

	"lawdesk/internal/gmail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	dir := filepath.Join(home, ".config", "lawdesk")
	assert.Equal(t, 6767, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, int64(5), cfg.Gmail.MaxResults)
	assert.Equal(t, gmail.FailFast, cfg.Policy())
	assert.Equal(t, 600, cfg.OCR.DPI)
	assert.Equal(t, filepath.Join(dir, "lawdesk.db"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(dir, "credentials.json"), cfg.Auth.Credentials)
	assert.NoError(t, Validate(cfg))
}

func TestLoadFileThenEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: 9000
gmail:
  max_results: 20
  policy: skip-failed
store:
  path: ~/cases.db
ocr:
  dpi: 300
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("LAWDESK_SERVER_PORT", "9100")
	t.Setenv("LAWDESK_OCR_TESSERACT", "/opt/bin/tesseract")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, int64(20), cfg.Gmail.MaxResults)
	assert.Equal(t, gmail.SkipFailed, cfg.Policy())
	assert.Equal(t, filepath.Join(home, "cases.db"), cfg.Store.Path)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, "/opt/bin/tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "pdftoppm", cfg.OCR.Pdftoppm)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := DefaultConfig(t.TempDir())
	require.NoError(t, Validate(base))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max results", func(c *Config) { c.Gmail.MaxResults = 0 }},
		{"unknown policy", func(c *Config) { c.Gmail.Policy = "retry-forever" }},
		{"negative dpi", func(c *Config) { c.OCR.DPI = -1 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"no store path", func(c *Config) { c.Store.Path = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
