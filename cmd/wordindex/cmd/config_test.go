package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/wordindex/internal/config"
)

func TestConfigShow_PrintsEffectiveYAML(t *testing.T) {
	// Given: a project config and an env override
	sandbox(t)
	writeFile(t, ".wordindex.yaml", "search:\n  cache_size: 32\n")
	t.Setenv("WORDINDEX_MAX_BATCH_SIZE", "5")

	// When: showing the config
	stdout, _, err := run(t, "config", "show")

	// Then: both layers are reflected
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, 5, cfg.Batch.MaxBatchSize)
	assert.Equal(t, 32, cfg.Search.CacheSize)
	assert.Contains(t, stdout, "timeout: 1m0s")
}

func TestConfigShow_JSON(t *testing.T) {
	sandbox(t)

	stdout, _, err := run(t, "config", "show", "--json")

	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Contains(t, decoded, "batch")
	assert.Contains(t, decoded, "logging")
}

func TestConfigShow_PlainFlagIsReflected(t *testing.T) {
	sandbox(t)

	stdout, _, err := run(t, "--plain", "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "plain: true")
}

func TestConfigInit_CreatesProjectConfig(t *testing.T) {
	// Given: an empty directory
	dir := sandbox(t)

	// When: running init
	stdout, _, err := run(t, "config", "init")

	// Then: the file exists and loads back to the defaults
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created configuration")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}

func TestConfigInit_ExistingFileNeedsForce(t *testing.T) {
	sandbox(t)
	writeFile(t, ".wordindex.yaml", "search:\n  cache_size: 32\n")

	// Without --force the file is untouched
	stdout, _, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(".wordindex.yaml")
	require.NoError(t, err)
	assert.Equal(t, "search:\n  cache_size: 32\n", string(data))

	// With --force it is backed up and rewritten
	stdout, _, err = run(t, "config", "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backup:")
	backups, err := config.ListBackups(".wordindex.yaml")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	data, err = os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "search:\n  cache_size: 32\n", string(data))
}

func TestConfigInit_User(t *testing.T) {
	dir := sandbox(t)

	_, _, err := run(t, "config", "init", "--user")

	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "xdg", "wordindex", "config.yaml"))
	assert.NoError(t, err)
}

func TestConfigPath(t *testing.T) {
	dir := sandbox(t)

	stdout, _, err := run(t, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(dir, "xdg", "wordindex", "config.yaml"))
	assert.Contains(t, stdout, ".wordindex.yaml (not found)")
}

func TestConfigInit_WritesCommentedTemplate(t *testing.T) {
	sandbox(t)

	_, _, err := run(t, "config", "init")

	require.NoError(t, err)
	data, err := os.ReadFile(".wordindex.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# wordindex configuration")
}

func TestConfigInit_Effective(t *testing.T) {
	// Given: an env override
	dir := sandbox(t)
	t.Setenv("WORDINDEX_MAX_BATCH_SIZE", "8")

	// When: writing the effective config
	_, _, err := run(t, "config", "init", "--effective")
	require.NoError(t, err)

	// Then: the override survives without the env var
	t.Setenv("WORDINDEX_MAX_BATCH_SIZE", "")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.MaxBatchSize)
}
