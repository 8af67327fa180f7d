package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := load(path)

	require.Equal(t, uint32(256), cfg.Geometry.PageSize)
	require.Equal(t, "127.0.0.1:8642", cfg.Inspector.ListenAddr)
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestLoadReadsBackSavedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := defaults()
	cfg.Inspector.ListenAddr = "0.0.0.0:9000"
	require.NoError(t, save(cfg, path))

	loaded := load(path)
	require.Equal(t, "0.0.0.0:9000", loaded.Inspector.ListenAddr)
}

func TestValidateRejectsZeroPageSize(t *testing.T) {
	cfg := defaults()
	cfg.Geometry.PageSize = 0
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsEmptyListenAddr(t *testing.T) {
	cfg := defaults()
	cfg.Inspector.ListenAddr = "  "
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := defaults()
	cfg.Log.Level = "verbose"
	require.Error(t, Validate(cfg))
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, Validate(defaults()))
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := defaults()
	cfg.Store.EmptyPageLimit = 0
	require.Error(t, Save(cfg, path))
}
