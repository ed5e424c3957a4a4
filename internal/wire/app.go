package wire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mithrel/folio/internal/cache"
	"github.com/mithrel/folio/internal/config"
	"github.com/mithrel/folio/internal/errs"
	"github.com/mithrel/folio/internal/keys"
	"github.com/mithrel/folio/internal/logging"
	"github.com/mithrel/folio/internal/pages"
	"github.com/mithrel/folio/internal/sync"
	"github.com/mithrel/folio/internal/upload"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg      *viper.Viper
	Log      *zap.SugaredLogger
	Tokens   keys.TokenStore
	Errors   *errs.Registry
	Sync     *sync.Client
	Uploader upload.Uploader

	closers []func() error
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	if err := config.CheckConfigValidity(v); err != nil {
		return nil, fmt.Errorf("invalid config:\n%w", err)
	}
	log, err := logging.New(v.GetString("logging.level"), v.GetString("logging.format"))
	if err != nil {
		return nil, err
	}
	app := &App{Cfg: v, Log: log, Errors: errs.NewRegistry()}
	app.closers = append(app.closers, func() error {
		// stderr sync fails on some terminals; nothing to do about it.
		_ = log.Sync()
		return nil
	})

	app.Tokens = TokenStore(v)
	remote := v.GetString("remote.url")
	token, err := keys.Lookup(app.Tokens, remote)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	c, err := app.buildCache(ctx)
	if err != nil {
		return nil, err
	}

	maxRetries := v.GetInt("sync.max_retries")
	exportRetries := v.GetInt("sync.export_retries")
	app.Sync = sync.New(sync.Options{
		BaseURL:          remote,
		Token:            token,
		User:             v.GetString("remote.user"),
		HTTPClient:       &http.Client{Timeout: v.GetDuration("sync.timeout")},
		Cache:            c,
		MaxRetries:       &maxRetries,
		ExportMaxRetries: &exportRetries,
		BaseDelay:        v.GetDuration("sync.base_delay"),
		Mode:             sync.Mode(v.GetString("sync.concurrency")),
		RemoteValidate:   v.GetBool("sync.remote_validate"),
		Errors:           app.Errors,
		Logger:           log.Named("sync"),
	})

	app.Uploader, err = NewUploader(v)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) buildCache(ctx context.Context) (cache.Cache, error) {
	ttl := a.Cfg.GetDuration("sync.cache_ttl")
	if a.Cfg.GetString("sync.cache_backend") != "redis" {
		return cache.NewMemory(ttl), nil
	}
	r := cache.NewRedis(cache.RedisConf{
		Addr:     a.Cfg.GetString("sync.redis_addr"),
		Password: a.Cfg.GetString("sync.redis_password"),
		DB:       a.Cfg.GetInt("sync.redis_db"),
		TTL:      ttl,
	})
	if err := r.Ping(ctx); err != nil {
		// A cache outage should not stop editing.
		a.Log.Warnw("redis cache unavailable, using memory", "addr", a.Cfg.GetString("sync.redis_addr"), "error", err)
		_ = r.Close()
		return cache.NewMemory(ttl), nil
	}
	a.closers = append(a.closers, r.Close)
	return r, nil
}

// TokenStore selects where remote tokens live.
func TokenStore(v *viper.Viper) keys.TokenStore {
	if v.GetString("remote.token_source") == "keyring" {
		return &keys.KeyringStore{}
	}
	cs := &keys.ConfigStore{}
	if tok := strings.TrimSpace(v.GetString("remote.token")); tok != "" {
		_ = cs.Put(v.GetString("remote.url"), tok)
	}
	return cs
}

// NewUploader builds the configured background image uploader.
func NewUploader(v *viper.Viper) (upload.Uploader, error) {
	switch v.GetString("upload.provider") {
	case "cloudinary":
		return upload.NewCloudinary(v.GetString("upload.cloudinary_url"), v.GetString("upload.folder"))
	default:
		return &upload.Local{Dir: v.GetString("upload.dir")}, nil
	}
}

// Grid returns the snapping settings from config.
func (a *App) Grid() pages.Grid {
	return pages.Grid{
		Size:      a.Cfg.GetFloat64("editor.grid_size"),
		Tolerance: a.Cfg.GetFloat64("editor.snap_tolerance"),
		Enabled:   a.Cfg.GetBool("editor.snap_enabled"),
	}
}

func (a *App) Close() error {
	var errList []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
