package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/clickmenu/pkg/config"
	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by the Get helpers when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return NewRedisRepositoryWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}), cfg.TTL)
}

func NewRedisRepositoryWithClient(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func OrderKey(requestID string) string {
	return fmt.Sprintf("order:%s", requestID)
}

func versionKey(key string) string {
	return "ver:" + key
}

func (r *RedisRepository) Load(ctx context.Context, key string, dest interface{}) error {
	return r.GetJSON(ctx, key, dest)
}

// Version reads the invalidation counter of key; a missing counter is 0.
func (r *RedisRepository) Version(ctx context.Context, key string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// StoreIf caches value under key only while its counter still equals
// version. A concurrent Invalidate aborts the MULTI and the fill is dropped.
func (r *RedisRepository) StoreIf(ctx context.Context, key string, version int64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	vkey := versionKey(key)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate deletes keys and bumps their counters so in-flight fills lose.
func (r *RedisRepository) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, k := range keys {
			pipe.Incr(ctx, versionKey(k))
			pipe.Expire(ctx, versionKey(k), r.versionTTL())
		}
		return nil
	})
	return err
}

func (r *RedisRepository) versionTTL() time.Duration {
	if r.ttl > 24*time.Hour {
		return 2 * r.ttl
	}
	return 24 * time.Hour
}
