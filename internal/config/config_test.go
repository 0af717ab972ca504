package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.SrcDir)
	assert.Equal(t, "tmp", cfg.TmpDir)
	assert.Equal(t, "bin", cfg.BinDir)
	assert.Equal(t, "lib", cfg.LibDir)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Greater(t, cfg.MaxConcurrentActions, 0)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "ekam.yaml")
	contents := "max_concurrent_actions: 4\nbypass_dirs:\n  - vendor\n  - .git\nlog_format: json\n"
	require.NoError(t, os.WriteFile(configFile, []byte(contents), 0o600))

	cfg, err := Load(WithConfigFile(configFile))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxConcurrentActions)
	assert.Equal(t, []string{"vendor", ".git"}, cfg.BypassDirs)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "src", cfg.SrcDir, "unset fields keep their default")
	assert.Equal(t, configFile, cfg.ConfigFileUsed)
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, err)

	require.NoError(t, ApplyOverrides(cfg, Config{MaxConcurrentActions: 8, Debug: true}))

	assert.Equal(t, 8, cfg.MaxConcurrentActions)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "src", cfg.SrcDir, "fields absent from the override are untouched")
}
