package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/clickmenu/gateway"
	"github.com/example/clickmenu/pkg/bootstrap"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/discovery"
	"go.uber.org/zap"
)

const serviceName = "gateway"

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

	logger.Info("Starting API Gateway",
		zap.Int("port", cfg.Gateway.Port),
		zap.String("host", cfg.Gateway.Host))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := bootstrap.New(ctx, cfg, logger, serviceName)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer rt.Close()

	instance := &discovery.ServiceInstance{Name: serviceName, Host: cfg.Gateway.Host, Port: cfg.Gateway.Port}
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		sd = nil
	} else {
		defer sd.Close()
		if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register gateway", zap.Error(err))
		}
	}

	gw := gateway.NewGateway(cfg, logger, sd, gateway.Services{
		Orders:    rt.Orders,
		Menu:      rt.Menu,
		Stores:    rt.Stores,
		Analytics: rt.Analytics,
	}, rt.Tokens)
	gw.SetupRoutes()

	gwErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			gwErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-gwErr:
		logger.Error("Gateway error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			logger.Error("Failed to deregister gateway", zap.Error(err))
		}
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}

	logger.Info("Gateway stopped")
}
