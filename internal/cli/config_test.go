package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repobrowse/internal/storage"
)

func TestConfigDir(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		original := os.Getenv("REPOBROWSE_CONFIG_DIR")
		os.Unsetenv("REPOBROWSE_CONFIG_DIR")
		defer os.Setenv("REPOBROWSE_CONFIG_DIR", original)

		dir := ConfigDir()
		assert.NotEmpty(t, dir)
		assert.True(t, strings.HasSuffix(dir, ".repobrowse"), "should end with .repobrowse")
	})

	t.Run("override with REPOBROWSE_CONFIG_DIR", func(t *testing.T) {
		original := os.Getenv("REPOBROWSE_CONFIG_DIR")
		os.Setenv("REPOBROWSE_CONFIG_DIR", "/tmp/test-repobrowse-config")
		defer os.Setenv("REPOBROWSE_CONFIG_DIR", original)

		assert.Equal(t, "/tmp/test-repobrowse-config", ConfigDir())
	})
}

func TestSettings_ApplyDefaults(t *testing.T) {
	var s Settings
	s.ApplyDefaults()

	assert.Equal(t, storage.DefaultPageSize, s.PageSize)
	assert.Equal(t, 1000, s.DeleteBatchSize)
	assert.Equal(t, storage.DefaultBusyTimeout, s.BusyTimeout)
	assert.True(t, s.IngestLockEnabled())
	assert.True(t, s.GitignoreEnabled())
}

func TestSettings_ExplicitValuesSurvive(t *testing.T) {
	f := false
	s := Settings{
		PageSize:   25,
		IngestLock: &f,
		Gitignore:  &f,
	}
	s.ApplyDefaults()

	assert.Equal(t, 25, s.PageSize)
	assert.False(t, s.IngestLockEnabled())
	assert.False(t, s.GitignoreEnabled())
}

func TestLoadSettings(t *testing.T) {
	tmpDir := t.TempDir()
	original := os.Getenv("REPOBROWSE_CONFIG_DIR")
	os.Setenv("REPOBROWSE_CONFIG_DIR", tmpDir)
	defer os.Setenv("REPOBROWSE_CONFIG_DIR", original)

	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, storage.DefaultPageSize, s.PageSize)
	})

	t.Run("values read from yaml", func(t *testing.T) {
		content := "page_size: 50\ndelete_batch_size: 10\nlogging: debug\ningest_lock: false\n"
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "settings.yaml"), []byte(content), 0600))

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, 50, s.PageSize)
		assert.Equal(t, 10, s.DeleteBatchSize)
		assert.Equal(t, "debug", s.LogLevel())
		assert.False(t, s.IngestLockEnabled())
		// untouched fields still default
		assert.Equal(t, storage.DefaultBusyTimeout, s.BusyTimeout)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "settings.yaml"), []byte("page_size: [\n"), 0600))

		_, err := LoadSettings()
		assert.Error(t, err)
	})
}

func TestInitConfigDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "config")
	original := os.Getenv("REPOBROWSE_CONFIG_DIR")
	os.Setenv("REPOBROWSE_CONFIG_DIR", tmpDir)
	defer os.Setenv("REPOBROWSE_CONFIG_DIR", original)

	require.NoError(t, InitConfigDir())

	data, err := os.ReadFile(SettingsPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "page_size")

	// a second run keeps the existing file
	require.NoError(t, os.WriteFile(SettingsPath(), []byte("page_size: 7\n"), 0600))
	require.NoError(t, InitConfigDir())
	data, err = os.ReadFile(SettingsPath())
	require.NoError(t, err)
	assert.Equal(t, "page_size: 7\n", string(data))
}

func TestIngestLockPath(t *testing.T) {
	assert.Equal(t, "/data/repos.repobrowse.lock", IngestLockPath("/data/repos.repobrowse"))
}
