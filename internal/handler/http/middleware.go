package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDFromContext returns the authenticated user id set by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// AuthMiddleware validates the bearer token and stores the subject id in
// the request context. Missing, malformed and expired tokens all get the
// same 401 body.
func AuthMiddleware(jwtSvc auth.JWTService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				respondWithError(w, apperrors.InvalidCredential())
				return
			}

			claims, err := jwtSvc.ValidateToken(tokenString)
			if err != nil {
				respondWithError(w, apperrors.InvalidCredential())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
