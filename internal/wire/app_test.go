package wire

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/internal/cache"
	"github.com/mithrel/folio/internal/config"
	"github.com/mithrel/folio/internal/keys"
	"github.com/mithrel/folio/internal/sync"
	"github.com/mithrel/folio/internal/upload"
)

func loadConfig(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	v.Set("data_dir", t.TempDir())
	require.NoError(t, config.Load(context.Background(), v))
	return v
}

func TestBuildAppDefaults(t *testing.T) {
	v := loadConfig(t)
	v.Set("remote.token", "secret")

	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, sync.ModeLastWriteWins, app.Sync.Mode())
	assert.Same(t, app.Errors, app.Sync.Errors())
	assert.IsType(t, &upload.Local{}, app.Uploader)

	tok, err := app.Tokens.Get(v.GetString("remote.url"))
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)

	g := app.Grid()
	assert.Equal(t, 10.0, g.Size)
	assert.True(t, g.Enabled)
}

func TestBuildAppRejectsInvalidConfig(t *testing.T) {
	v := loadConfig(t)
	v.Set("sync.concurrency", "optimistic")
	_, err := BuildApp(context.Background(), v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync.concurrency")
}

func TestBuildCacheRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	v := loadConfig(t)
	v.Set("sync.cache_backend", "redis")
	v.Set("sync.redis_addr", mr.Addr())

	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	c, err := app.buildCache(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &cache.Redis{}, c)
	require.NoError(t, app.Close())
}

func TestBuildCacheRedisWithPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")
	v := loadConfig(t)
	v.Set("sync.cache_backend", "redis")
	v.Set("sync.redis_addr", mr.Addr())

	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	c, err := app.buildCache(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c, "wrong credentials fall back to memory")

	v.Set("sync.redis_password", "s3cret")
	c, err = app.buildCache(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &cache.Redis{}, c)
	require.NoError(t, app.Close())
}

func TestBuildCacheFallsBackToMemory(t *testing.T) {
	v := loadConfig(t)
	v.Set("sync.cache_backend", "redis")
	v.Set("sync.redis_addr", "127.0.0.1:1")

	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	c, err := app.buildCache(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c)
}

func TestTokenStoreSource(t *testing.T) {
	v := viper.New()
	v.Set("remote.token_source", "keyring")
	assert.IsType(t, &keys.KeyringStore{}, TokenStore(v))

	v.Set("remote.token_source", "config")
	assert.IsType(t, &keys.ConfigStore{}, TokenStore(v))
}
