package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lowimpl "github.com/redis/go-redis/v9"

	"github.com/mithrel/folio/pkg/api"
)

const redisKeyPrefix = "folio:template:"

type RedisConf struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis shares cached templates between processes. Expiry is left to the
// server.
type Redis struct {
	ttl      time.Duration
	internal *lowimpl.Client
}

var _ Cache = (*Redis)(nil)

func NewRedis(conf RedisConf) *Redis {
	ttl := conf.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		ttl: ttl,
		internal: lowimpl.NewClient(&lowimpl.Options{
			Addr:     conf.Addr,
			Password: conf.Password,
			DB:       conf.DB,
		}),
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.internal.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.internal == nil {
		return nil
	}
	return r.internal.Close()
}

func (r *Redis) Get(ctx context.Context, id string) (*api.Template, bool, error) {
	val, err := r.internal.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, lowimpl.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var t api.Template
	if err := json.Unmarshal(val, &t); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", id, err)
	}
	return &t, true, nil
}

func (r *Redis) Set(ctx context.Context, t *api.Template) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.internal.Set(ctx, redisKeyPrefix+t.ID, b, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.internal.Del(ctx, redisKeyPrefix+id).Err()
}
