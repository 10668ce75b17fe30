package grpc

import (
	"errors"

	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, service.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrStoreNotFound):
		return codes.NotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, models.ErrStoreExists),
		errors.Is(err, service.ErrStoreInactive):
		return codes.FailedPrecondition
	case errors.Is(err, service.ErrScope):
		return codes.PermissionDenied
	case errors.Is(err, service.ErrInvalidCredentials):
		return codes.Unauthenticated
	}
	return codes.Internal
}

func toStatus(logger *zap.Logger, method string, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		logger.Error("RPC internal error", zap.String("method", method), zap.Error(err))
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
