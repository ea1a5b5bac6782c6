package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestLoadErrorsWhenExplicitFileAbsent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err) // explicit path must exist
	assert.Nil(t, cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_hours_per_day: 6\nstorage: sqlite\nsqlite_path: data.db\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cfg.MaxHoursPerDay)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "data.db", cfg.SQLitePath)
	// Untouched fields still come from Default().
	assert.Equal(t, "greedy", cfg.DefaultAlgorithm)
	assert.Equal(t, 8080, cfg.ServerPort)
}

func TestValidateRejectsBadDayWindow(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.DayStartTime = cfg.DayEndTime
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresPostgresDSN(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Storage = StoragePostgres
	assert.Error(t, cfg.Validate())
	cfg.PostgresDSN = "postgres://localhost/taskdog"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownStorage(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Storage = "mongo"
	assert.Error(t, cfg.Validate())
}
