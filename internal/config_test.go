package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, DefaultImageExtensions, cfg.ImageExt)
	assert.Equal(t, BackendNative, cfg.JPEGBackend)
	assert.False(t, cfg.CreateMissingExif)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfig_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, "backdate")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backdate.toml"), []byte("workers = 3\n"), 0644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	content := strings.Join([]string{
		`workers = 16`,
		`image_extensions = [".jpg", ".png"]`,
		`jpeg_backend = "exiftool"`,
		`create_missing_exif = true`,
		`log_level = "DEBUG"`,
		`watch_settle_delay = "500ms"`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, []string{".jpg", ".png"}, cfg.ImageExt)
	assert.Equal(t, BackendExifTool, cfg.JPEGBackend)
	assert.True(t, cfg.CreateMissingExif)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BACKDATE_WORKERS", "5")
	t.Setenv("BACKDATE_DRY_RUN", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.True(t, cfg.DryRun)
}

func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		field   string
	}{
		{"zero workers", "workers = 0", "Workers"},
		{"bad backend", `jpeg_backend = "magick"`, "JPEGBackend"},
		{"bad extension", `image_extensions = [".gif"]`, "ImageExt"},
		{"bad color", `color = "sometimes"`, "Color"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "backdate.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestConfig_DuplicateExtensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImageExt = []string{".jpg", ".JPG"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
