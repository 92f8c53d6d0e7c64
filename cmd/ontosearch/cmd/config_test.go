package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ontosearch/internal/config"
	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	root := NewRootCmd()

	// When: finding the config command
	configCmd, _, err := root.Find([]string{"config"})
	require.NoError(t, err)

	// Then: init, show and path are registered
	names := make(map[string]bool)
	for _, sc := range configCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["show"])
	assert.True(t, names["path"])
}

func TestConfigPathCmd_OutputsPath(t *testing.T) {
	setupHome(t)

	stdout, _, err := runCLI(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(stdout))
}

func TestConfigInitCmd_CreatesAndRefusesOverwrite(t *testing.T) {
	// Given: no user config
	setupHome(t)
	path := config.GetUserConfigPath()

	// When: running init
	stdout, _, err := runCLI(t, "config", "init")

	// Then: the defaults are written and load back
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig().Engine.QueueSize, cfg.Engine.QueueSize)

	// When: running init again without --force
	_, _, err = runCLI(t, "config", "init")

	// Then: it refuses
	require.Error(t, err)
	assert.Equal(t, ontoerrors.ErrCodeInvalidInput, ontoerrors.GetCode(err))
}

func TestConfigInitCmd_ForceKeepsBackup(t *testing.T) {
	// Given: an edited user config
	setupHome(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  queue_size: 7\n"), 0o644))

	// When: forcing init
	stdout, _, err := runCLI(t, "config", "init", "--force")
	require.NoError(t, err)

	// Then: the old file is backed up and the new one has defaults
	assert.Contains(t, stdout, "Backup:")
	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(old), "queue_size: 7")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Engine.QueueSize)
}

func TestConfigShowCmd_JSON(t *testing.T) {
	// Given: a config file selected with --config
	home := t.TempDir()
	setupHome(t)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  max_results: 25\n"), 0o644))

	// When: showing it as JSON
	stdout, _, err := runCLI(t, "--config", path, "config", "show", "--json")
	require.NoError(t, err)

	// Then: keys keep their YAML names
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.EqualValues(t, 25, doc["search"]["max_results"])
	assert.Contains(t, doc["engine"], "queue_size")
}

func TestConfigShowCmd_YAML(t *testing.T) {
	setupHome(t)

	stdout, _, err := runCLI(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "enabled_types:")
	assert.Contains(t, stdout, "debounce: 300ms")
}
