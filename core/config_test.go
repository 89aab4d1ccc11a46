package core

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdissect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scripts_dir: /opt/packets
script_ext: yml
dumps_dir: /tmp/dumps
inflate: qt
cost_limit: 1000
log:
  level: debug
  file: /tmp/vdissect.log
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/packets", cfg.ScriptsDir)
	assert.Equal(t, ".yml", cfg.ScriptExt)
	assert.Equal(t, "/tmp/dumps", cfg.DumpsDir)
	assert.Equal(t, "qt", cfg.Inflate)
	assert.Equal(t, uint64(1000), cfg.CostLimit)
	assert.Equal(t, DefaultMaxRepeat, cfg.MaxRepeat)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/vdissect.log", cfg.Log.File)
}

func TestLoadConfigToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vdissect.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
scripts_dir = "scripts"
sql_dir = "sql"
sqlite = "stage.db"
max_repeat = 10

[log]
level = "warn"
development = true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "scripts", cfg.ScriptsDir)
	assert.Equal(t, DefaultScriptExt, cfg.ScriptExt)
	assert.Equal(t, "sql", cfg.SQLDir)
	assert.Equal(t, "stage.db", cfg.SQLite)
	assert.Equal(t, DefaultInflater, cfg.Inflate)
	assert.Equal(t, 10, cfg.MaxRepeat)
	assert.True(t, cfg.Log.Development)
}

func TestConfigSetup(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Setup())

	cfg.MaxRepeat = -1
	assert.Error(t, cfg.Setup())

	cfg = NewConfig()
	cfg.ScriptsDir = ""
	assert.Error(t, cfg.Setup())

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
