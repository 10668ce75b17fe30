// Package bootstrap builds the storage, cache, event sinks and services a
// ClickMenu process runs on from one Config.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/events"
	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/repository"
	"github.com/example/clickmenu/pkg/service"
	"go.uber.org/zap"
)

type Runtime struct {
	Orders    service.OrderService
	Menu      service.MenuService
	Stores    service.StoreService
	Analytics service.AnalyticsService
	Tokens    *auth.TokenIssuer

	logger  *zap.Logger
	closers []func() error
}

type repos struct {
	orders models.OrderRepository
	menu   models.MenuRepository
	stores models.StoreRepository
}

// New connects every configured backend. Redis, MongoDB and Kafka are
// optional: an empty address leaves that concern out.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, name string) (*Runtime, error) {
	rt := &Runtime{logger: logger}

	r, err := rt.openStorage(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	cache := rt.openCache(ctx, cfg)

	sinks, err := rt.openSinks(ctx, cfg, name)
	if err != nil {
		rt.Close()
		return nil, err
	}
	dispatcher, err := events.NewActorDispatcher(logger, sinks...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	// stop the dispatcher before the sinks it feeds
	rt.closers = append([]func() error{dispatcher.Close}, rt.closers...)

	passcodes := auth.NewBcryptManager()
	rt.Tokens = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	admin := service.AdminAccount{Username: cfg.Auth.AdminUsername, PasswordHash: cfg.Auth.AdminPasswordHash}
	if admin.PasswordHash == "" {
		logger.Warn("No admin password hash configured, admin login is disabled")
	}

	rt.Orders = service.NewOrderService(r.orders, r.menu, r.stores, cache, dispatcher, logger)
	rt.Menu = service.NewMenuService(r.menu, r.stores, dispatcher, logger)
	rt.Stores = service.NewStoreService(r.stores, passcodes, rt.Tokens, admin, dispatcher, logger)
	rt.Analytics = service.NewAnalyticsService(r.orders, r.menu, r.stores, logger)
	return rt, nil
}

func (rt *Runtime) openStorage(cfg *config.Config) (*repos, error) {
	if cfg.Storage.Driver == "memory" {
		rt.logger.Warn("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &repos{orders: mem.Orders(), menu: mem.Menu(), stores: mem.Stores()}, nil
	}

	db, err := repository.OpenMySQL(&cfg.MySQL)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	rt.closers = append(rt.closers, sqlDB.Close)
	rt.logger.Info("MySQL connected", zap.String("host", cfg.MySQL.Host), zap.String("database", cfg.MySQL.Database))
	return &repos{
		orders: repository.NewOrderRepository(db),
		menu:   repository.NewMenuRepository(db),
		stores: repository.NewStoreRepository(db),
	}, nil
}

func (rt *Runtime) openCache(ctx context.Context, cfg *config.Config) service.Cache {
	if cfg.Redis.Addr == "" {
		if cfg.Storage.Driver == "memory" {
			return repository.NewMemoryCache(cfg.Redis.TTL)
		}
		return service.NoCache()
	}
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	rt.closers = append(rt.closers, redisRepo.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisRepo.Ping(pingCtx); err != nil {
		rt.logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		rt.logger.Info("Redis connected successfully")
	}
	return redisRepo
}

func (rt *Runtime) openSinks(ctx context.Context, cfg *config.Config, name string) ([]events.Sink, error) {
	sinks := []events.Sink{events.NewLogSink(rt.logger)}

	if cfg.MongoDB.URI != "" {
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return mongoRepo.Close(closeCtx)
		})
		if err := mongoRepo.Ping(ctx); err != nil {
			rt.logger.Warn("MongoDB ping failed", zap.Error(err))
		}
		sinks = append(sinks, events.NewAuditSink(mongoRepo, name))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		sink := events.NewKafkaSink(producer, cfg.Kafka.Topic, rt.logger)
		rt.closers = append(rt.closers, sink.Close)
		sinks = append(sinks, sink)
		rt.logger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	return sinks, nil
}

func (rt *Runtime) Close() {
	for _, c := range rt.closers {
		if err := c(); err != nil {
			rt.logger.Warn("Shutdown step failed", zap.Error(err))
		}
	}
	rt.closers = nil
}
