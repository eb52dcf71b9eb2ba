package grpcapi

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/skysailor/internal/auth"
	"github.com/Domenick1991/skysailor/internal/domain"
)

// CodeFor maps a service error onto a gRPC status code.
func CodeFor(err error) codes.Code {
	switch {
	case domain.IsValidation(err):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoMatches):
		return codes.NotFound
	case errors.Is(err, domain.ErrInsufficientCapacity):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrWriteConflict):
		return codes.Aborted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case domain.IsStore(err):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func toStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := CodeFor(err)
	if code == codes.Internal || code == codes.Unavailable {
		log.Error().Err(err).Str("method", method).Msg("rpc failed")
	}
	return status.Error(code, err.Error())
}

func currentUser(ctx context.Context) (string, error) {
	userID := auth.UserID(ctx)
	if userID == "" {
		return "", status.Error(codes.Unauthenticated, domain.ErrUnauthenticated.Error())
	}
	return userID, nil
}
