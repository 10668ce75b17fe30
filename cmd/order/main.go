package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/clickmenu/pkg/bootstrap"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/discovery"
	"github.com/example/clickmenu/pkg/grpc"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting order service",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := bootstrap.New(ctx, cfg, logger, cfg.Server.Name)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer rt.Close()

	server := grpc.NewServer(cfg, logger, rt.Orders, rt.Analytics, rt.Stores, rt.Tokens)

	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
	} else {
		defer sd.Close()
		if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Error("Server error", zap.Error(err))
	}

	if sd != nil {
		deregCtx, deregCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := sd.Deregister(deregCtx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		deregCancel()
	}
	server.Stop()

	logger.Info("Service stopped")
}
