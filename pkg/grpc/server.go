package grpc

import (
	"fmt"
	"net"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server hosts the admin RPC services over the JSON codec.
type Server struct {
	config *config.Config
	logger *zap.Logger
	srv    *grpc.Server
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	orders service.OrderService,
	analytics service.AnalyticsService,
	stores service.StoreService,
	tokens *auth.TokenIssuer,
) *Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(AdminInterceptor(tokens, logger)))
	srv.RegisterService(&OrderServiceDesc, NewOrderServer(orders, analytics, logger))
	srv.RegisterService(&StoreServiceDesc, NewStoreServer(stores, logger))

	return &Server{config: cfg, logger: logger, srv: srv}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.logger.Info("Order service started", zap.String("address", addr))
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Stop drains in-flight calls.
func (s *Server) Stop() {
	s.srv.GracefulStop()
}
