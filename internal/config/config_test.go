package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigValidityDefaults(t *testing.T) {
	v := viper.New()
	applyDefaults(v)
	require.NoError(t, CheckConfigValidity(v))
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := viper.New()
	applyDefaults(v)
	v.Set("data_dir", "")
	v.Set("remote.url", "not a url")
	v.Set("sync.cache_backend", "memcached")
	v.Set("sync.concurrency", "optimistic")
	v.Set("sync.max_retries", -1)
	v.Set("sync.base_delay", "soon")
	v.Set("autosave.interval", "0s")
	v.Set("editor.grid_size", 0)
	v.Set("upload.provider", "cloudinary")
	v.Set("upload.cloudinary_url", "")
	v.Set("logging.level", "loud")
	v.Set("logging.format", "xml")

	err := CheckConfigValidity(v)
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"data_dir is required",
		`remote.url "not a url" is not a valid url`,
		"sync.cache_backend must be memory or redis",
		"sync.concurrency must be lww or version",
		"sync.max_retries must be >= 0",
		"sync.base_delay must be a positive duration",
		"autosave.interval must be a positive duration",
		"editor.grid_size must be greater than 0",
		"upload.cloudinary_url is required",
		`logging.level "loud" is not a level`,
		"logging.format must be console or json",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestAutosaveIntervalIgnoredWhenDisabled(t *testing.T) {
	v := viper.New()
	applyDefaults(v)
	v.Set("autosave.enabled", false)
	v.Set("autosave.interval", "")
	assert.NoError(t, CheckConfigValidity(v))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir = \""+dir+"\"\n[sync]\nconcurrency = \"version\"\nmax_retries = 5\n"), 0o600))
	t.Setenv("FOLIO_SYNC_MAX_RETRIES", "7")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, Load(context.Background(), v))

	assert.Equal(t, "version", v.GetString("sync.concurrency"))
	assert.Equal(t, 7, v.GetInt("sync.max_retries"))
	assert.Equal(t, "30s", v.GetString("autosave.interval"))
	assert.Equal(t, "sqlite://"+filepath.Join(dir, "folio.db"), v.GetString("server.dsn"))
	assert.Equal(t, filepath.Join(dir, "exports"), v.GetString("server.exports_dir"))
}

func TestRenderDefaultTOMLRoundTrips(t *testing.T) {
	out := RenderDefaultTOML()
	assert.True(t, strings.HasPrefix(out, "# folio configuration (TOML)\n"))
	assert.Contains(t, out, "[sync]\n")
	assert.Contains(t, out, `concurrency = "lww"`)
	assert.Contains(t, out, "grid_size = 10")

	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(out)))
	assert.Equal(t, 2, v.GetInt("sync.max_retries"))
	assert.Equal(t, "memory", v.GetString("sync.cache_backend"))
	require.NoError(t, CheckConfigValidity(v))
}

func TestUpdateTOML(t *testing.T) {
	existing := "data_dir = \"/tmp/folio\"\nlegacy = true\n\n[sync]\nconcurrency = \"version\"\n"
	out, changed := UpdateTOML(existing)
	require.True(t, changed)

	assert.Contains(t, out, "# OUTDATED: option removed from config schema\n# legacy = true")
	assert.Contains(t, out, "concurrency = \"version\"")
	assert.Contains(t, out, "# Added by config update")
	assert.Contains(t, out, "[autosave]")
	assert.Equal(t, 1, strings.Count(out, "data_dir ="))

	again, changed := UpdateTOML(out)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}
