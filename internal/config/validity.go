package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// CheckConfigValidity reports every problem in v at once, one per line.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}

	if raw := strings.TrimSpace(v.GetString("remote.url")); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			add("remote.url %q is not a valid url", raw)
		}
	}
	switch v.GetString("remote.token_source") {
	case "", "config", "keyring":
	default:
		add("remote.token_source must be config or keyring")
	}

	switch v.GetString("sync.cache_backend") {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(v.GetString("sync.redis_addr")) == "" {
			add("sync.redis_addr is required when sync.cache_backend is redis")
		}
	default:
		add("sync.cache_backend must be memory or redis")
	}
	switch v.GetString("sync.concurrency") {
	case "", "lww", "version":
	default:
		add("sync.concurrency must be lww or version")
	}
	for _, k := range []string{"sync.max_retries", "sync.export_retries", "sync.redis_db"} {
		if v.GetInt(k) < 0 {
			add("%s must be >= 0", k)
		}
	}
	for _, k := range []string{"sync.cache_ttl", "sync.base_delay", "sync.timeout"} {
		if !positiveDuration(v, k) {
			add("%s must be a positive duration", k)
		}
	}

	if v.GetBool("autosave.enabled") && !positiveDuration(v, "autosave.interval") {
		add("autosave.interval must be a positive duration")
	}

	if v.GetFloat64("editor.grid_size") <= 0 {
		add("editor.grid_size must be greater than 0")
	}
	if v.GetFloat64("editor.snap_tolerance") < 0 {
		add("editor.snap_tolerance must be >= 0")
	}

	switch v.GetString("upload.provider") {
	case "", "local":
	case "cloudinary":
		if strings.TrimSpace(v.GetString("upload.cloudinary_url")) == "" {
			add("upload.cloudinary_url is required when upload.provider is cloudinary")
		}
	default:
		add("upload.provider must be local or cloudinary")
	}

	if lvl := v.GetString("logging.level"); lvl != "" {
		if _, err := zapcore.ParseLevel(lvl); err != nil {
			add("logging.level %q is not a level", lvl)
		}
	}
	switch v.GetString("logging.format") {
	case "", "console", "json":
	default:
		add("logging.format must be console or json")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "\n"))
}

func positiveDuration(v *viper.Viper, key string) bool {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return false
	}
	d, err := time.ParseDuration(raw)
	return err == nil && d > 0
}
