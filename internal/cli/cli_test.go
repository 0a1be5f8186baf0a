package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbdeck/pbdeck/internal/config"
)

func TestSplitHosts(t *testing.T) {
	assert.Equal(t, []string{"sw1", "sw2"}, splitHosts("sw1,sw2"))
	assert.Equal(t, []string{"sw1", "sw2"}, splitHosts(" sw1 , sw2 ,"))
	assert.Nil(t, splitHosts(""))
	assert.Nil(t, splitHosts(" , "))
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "v1.2.3", formatVersion("v1.2.3"))
}

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer func() { version, commit, date = origVersion, origCommit, origDate }()

	SetVersionInfo("2.0.0", "def5678", "2026-06-15T10:00:00Z")
	assert.Equal(t, "2.0.0", version)
	assert.Equal(t, "def5678", commit)
	assert.Equal(t, "2026-06-15T10:00:00Z", date)
}

func TestVersionCommandHasShortFlag(t *testing.T) {
	flag := versionCmd.Flags().Lookup("short")
	require.NotNil(t, flag)
	assert.Equal(t, "bool", flag.Value.Type())
	assert.Equal(t, "false", flag.DefValue)
}

func TestDoctorChecks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.Command = "sh"

	results := checkEngine(cfg)
	require.Len(t, results, 2)
	assert.True(t, results[0].ok, "sh should be on PATH")
	assert.True(t, results[1].ok, "default vault flag should pass")

	cfg.Engine.Command = "definitely-not-a-real-binary"
	cfg.Engine.VaultFlag = ""
	results = checkEngine(cfg)
	require.Len(t, results, 2)
	assert.False(t, results[0].ok)
	assert.False(t, results[1].ok)
}

func TestDoctorInventoryMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := config.DefaultConfig()
	results := checkInventory(cfg)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.False(t, r.ok)
	}
}

func TestInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, initConfig(false))

	path := filepath.Join(dir, config.ConfigFileName)
	_, err := os.Stat(path)
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))
	assert.Equal(t, "ansible-playbook", cfg.Engine.Command)
	assert.Equal(t, "--ask-vault-pass", cfg.Engine.VaultFlag)
}

func TestInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	require.NoError(t, initConfig(true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inventory_glob")
}
