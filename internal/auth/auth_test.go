package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/skysailor/config"
)

func newTokens() *Tokens {
	return NewTokens(config.JWTConfig{Secret: "test-secret", Issuer: "skysailor", AccessExpireMinutes: 5})
}

func TestTokens_IssueValidate(t *testing.T) {
	tokens := newTokens()

	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	userID, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = tokens.Issue(" ")
	assert.Error(t, err)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := newTokens()
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	other := NewTokens(config.JWTConfig{Secret: "other", Issuer: "skysailor", AccessExpireMinutes: 5})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = newTokens().Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = BearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTokens()
	token, err := tokens.Issue("u1")
	require.NoError(t, err)

	var seen []string
	router := gin.New()
	router.Use(Middleware(tokens, func(userID string) { seen = append(seen, userID) }))
	router.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.Equal(t, []string{"u1"}, seen)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestUnaryInterceptor(t *testing.T) {
	tokens := newTokens()
	token, err := tokens.Issue("u1")
	require.NoError(t, err)
	interceptor := UnaryInterceptor(tokens)

	handler := func(ctx context.Context, req any) (any, error) {
		return UserID(ctx), nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	resp, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.Equal(t, "u1", resp)

	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUserID_Empty(t *testing.T) {
	assert.Equal(t, "", UserID(context.Background()))
	assert.Equal(t, "u2", UserID(WithUserID(context.Background(), "u2")))
}
