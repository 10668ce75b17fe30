package grpc

import (
	"context"
	"strings"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type scopeKey struct{}

// AdminInterceptor admits only calls carrying an admin bearer token in the
// "authorization" metadata.
func AdminInterceptor(tokens *auth.TokenIssuer, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}
		raw := strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer "))
		claims, err := tokens.Parse(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if claims.Role != auth.RoleAdmin {
			return nil, status.Error(codes.PermissionDenied, "admin token required")
		}

		resp, err := handler(context.WithValue(ctx, scopeKey{}, service.AdminScope(claims.Subject)), req)
		if err != nil {
			logger.Debug("RPC failed", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return resp, err
	}
}

func scopeFromContext(ctx context.Context) service.Scope {
	scope, _ := ctx.Value(scopeKey{}).(service.Scope)
	return scope
}

// tokenCredentials attaches a bearer token to every call.
type tokenCredentials string

func (t tokenCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

func (tokenCredentials) RequireTransportSecurity() bool {
	return false
}
