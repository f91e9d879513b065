package handler

import (
	"context"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
	"strings"
)

type contextKey string

const callerKey contextKey = "caller"

// AuthMiddleware verifies Bearer access tokens and puts the caller into the request context.
type AuthMiddleware struct {
	codec *service.TokenCodec
}

func NewAuthMiddleware(codec *service.TokenCodec) *AuthMiddleware {
	return &AuthMiddleware{codec: codec}
}

// Required rejects requests without a valid access token.
func (m *AuthMiddleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			err := common.NewKindError(http.StatusUnauthorized, "Unauthenticated", "Access token required", nil)
			err.Send(w)
			return
		}

		claims, err := m.codec.Verify(tokenString, model.KindAccess)
		if err != nil {
			appErr := common.NewKindError(http.StatusUnauthorized, "Unauthenticated", "Invalid or expired token", nil)
			appErr.Send(w)
			return
		}

		ctx := WithCaller(r.Context(), model.AuthenticatedCaller{UserID: claims.UserID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the caller when a valid access token is present and otherwise lets the request through anonymously.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenString, ok := bearerToken(r); ok {
			if claims, err := m.codec.Verify(tokenString, model.KindAccess); err == nil {
				r = r.WithContext(WithCaller(r.Context(), model.AuthenticatedCaller{UserID: claims.UserID}))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func WithCaller(ctx context.Context, caller model.AuthenticatedCaller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the caller set by the auth middleware.
func CallerFromContext(ctx context.Context) (model.AuthenticatedCaller, bool) {
	caller, ok := ctx.Value(callerKey).(model.AuthenticatedCaller)
	return caller, ok && caller.UserID > 0
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	headerParts := strings.Fields(authHeader)
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		return "", false
	}
	return headerParts[1], true
}
