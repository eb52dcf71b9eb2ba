package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Hook runs once per authenticated request.
type Hook func(userID string)

// Middleware rejects requests without a valid bearer token and stores the
// user id in the request context.
func Middleware(tokens *Tokens, hooks ...Hook) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		userID, err := tokens.Validate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		for _, hook := range hooks {
			hook(userID)
		}
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func authenticate(ctx context.Context, tokens *Tokens, hooks []Hook) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, ErrMissingToken.Error())
	}
	raw, err := BearerToken(strings.TrimSpace(values[0]))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	userID, err := tokens.Validate(raw)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	for _, hook := range hooks {
		hook(userID)
	}
	return WithUserID(ctx, userID), nil
}

func UnaryInterceptor(tokens *Tokens, hooks ...Hook) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authenticate(ctx, tokens, hooks)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

type authStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authStream) Context() context.Context {
	return s.ctx
}

func StreamInterceptor(tokens *Tokens, hooks ...Hook) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authenticate(ss.Context(), tokens, hooks)
		if err != nil {
			return err
		}
		return handler(srv, &authStream{ServerStream: ss, ctx: ctx})
	}
}
