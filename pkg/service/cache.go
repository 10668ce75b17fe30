package service

import (
	"context"

	"github.com/example/clickmenu/pkg/repository"
	"go.uber.org/zap"
)

// Cache is the read-through order cache. Load returns
// repository.ErrCacheMiss when the key is absent.
//
// A fill reads Version before loading the record and writes with StoreIf,
// which drops the value if an Invalidate bumped the version in between.
type Cache interface {
	Load(ctx context.Context, key string, dest interface{}) error
	Version(ctx context.Context, key string) (int64, error)
	StoreIf(ctx context.Context, key string, version int64, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

type noCache struct{}

func (noCache) Load(context.Context, string, interface{}) error           { return repository.ErrCacheMiss }
func (noCache) Version(context.Context, string) (int64, error)            { return 0, nil }
func (noCache) StoreIf(context.Context, string, int64, interface{}) error { return nil }
func (noCache) Invalidate(context.Context, ...string) error               { return nil }

// NoCache disables caching.
func NoCache() Cache { return noCache{} }

func invalidate(ctx context.Context, cache Cache, logger *zap.Logger, keys ...string) {
	if err := cache.Invalidate(ctx, keys...); err != nil {
		logger.Error("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
