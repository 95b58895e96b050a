package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vire-research.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 4251, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "./data/analyses", cfg.Artifacts.AnalysisDir)
	assert.Equal(t, "./data/backtest", cfg.Artifacts.BacktestDir)
	assert.Equal(t, 8, cfg.Artifacts.ReadConcurrency)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.Equal(t, 200, cfg.Cache.MaxEntries)
	assert.Equal(t, 24*60, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090

[artifacts]
analysis_dir = "/srv/analyses"
`)

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/analyses", cfg.Artifacts.AnalysisDir)
	assert.Equal(t, "./data/backtest", cfg.Artifacts.BacktestDir, "untouched keys keep defaults")
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfig(t, "[server]\nport = 1000\nhost = \"first\"\n")
	second := writeConfig(t, "[server]\nport = 2000\n")

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Server.Port)
	assert.Equal(t, "first", cfg.Server.Host)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFromFiles_BadToml(t *testing.T) {
	path := writeConfig(t, "not [valid toml")
	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIRE_SERVER_PORT", "7777")
	t.Setenv("VIRE_BACKTEST_DIR", "/env/backtest")
	t.Setenv("VIRE_JWT_SECRET", "env-secret")
	t.Setenv("VIRE_ADMIN_USER", "root")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "/env/backtest", cfg.Artifacts.BacktestDir)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "root", cfg.Auth.AdminUser)
}

func TestEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("VIRE_SERVER_PORT", "not-a-number")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 4251, cfg.Server.Port)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 8080, "0.0.0.0")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 8080, cfg.Server.Port, "zero values do not override")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Empty(t, cfg.Validate())

	cfg.Server.Port = 0
	cfg.Artifacts.AnalysisDir = ""
	issues := cfg.Validate()
	assert.Len(t, issues, 2)
}

func TestGetFullVersion(t *testing.T) {
	assert.Equal(t, "dev (build: unknown, commit: unknown)", GetFullVersion())
}
