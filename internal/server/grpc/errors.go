package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status codes. Internal errors are
// logged and replaced with a generic message.
func toStatus(ctx context.Context, log logging.Logger, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "token expired")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, "refresh token expired")
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrorProtectedUser):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	log.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
