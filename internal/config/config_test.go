package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "inventory/*.yml", cfg.InventoryGlob)
	assert.Equal(t, "playbooks/*.yml", cfg.PlaybookGlob)
	assert.Equal(t, "ansible-playbook", cfg.Engine.Command)
	assert.Equal(t, 10*time.Second, cfg.Engine.TerminateGrace)
	assert.Equal(t, 10000, cfg.Output.BufferLines)
	assert.True(t, cfg.Splash.Enabled)
	assert.NoError(t, Validate(cfg))
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
version: 1
inventory_glob: "inv/*.yaml"
playbook_glob: "books/*.yaml"
engine:
  command: ansible-playbook
  args: ["-v"]
  pty: true
  terminate_grace: 30s
output:
  buffer_lines: 500
  color: never
  tick_interval: 50ms
splash:
  enabled: false
log_file: /tmp/pbdeck.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "inv/*.yaml", cfg.InventoryGlob)
	assert.Equal(t, "books/*.yaml", cfg.PlaybookGlob)
	assert.Equal(t, []string{"-v"}, cfg.Engine.Args)
	assert.True(t, cfg.Engine.PTY)
	assert.Equal(t, 30*time.Second, cfg.Engine.TerminateGrace)
	assert.Equal(t, 500, cfg.Output.BufferLines)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, 50*time.Millisecond, cfg.Output.TickInterval)
	assert.False(t, cfg.Splash.Enabled)
	assert.Equal(t, "/tmp/pbdeck.log", cfg.LogFile)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
inventory_glob: "site-inv/*.yml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "site-inv/*.yml", cfg.InventoryGlob)
	assert.Equal(t, "playbooks/*.yml", cfg.PlaybookGlob)
	assert.Equal(t, "ansible-playbook", cfg.Engine.Command)
	assert.Equal(t, "--ask-vault-pass", cfg.Engine.VaultFlag)
	assert.Equal(t, 10*time.Second, cfg.Engine.TerminateGrace)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "engine: [not: a: mapping\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestFindInCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	found, err := Find("")
	require.NoError(t, err)
	// Compare resolved paths since t.TempDir may be behind a symlink.
	wantInfo, err := os.Stat(path)
	require.NoError(t, err)
	gotInfo, err := os.Stat(found)
	require.NoError(t, err)
	assert.True(t, os.SameFile(wantInfo, gotInfo))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"newer version", func(c *Config) { c.Version = CurrentConfigVersion + 1 }},
		{"empty inventory glob", func(c *Config) { c.InventoryGlob = " " }},
		{"empty playbook glob", func(c *Config) { c.PlaybookGlob = "" }},
		{"empty engine command", func(c *Config) { c.Engine.Command = "" }},
		{"zero buffer", func(c *Config) { c.Output.BufferLines = 0 }},
		{"zero grace", func(c *Config) { c.Engine.TerminateGrace = 0 }},
		{"zero tick", func(c *Config) { c.Output.TickInterval = 0 }},
		{"bad color", func(c *Config) { c.Output.Color = "rainbow" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
