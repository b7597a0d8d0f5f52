package rest

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userCtxKey contextKey = "user_id"

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userCtxKey).(string)
	return id, ok && id != ""
}

// authMiddleware requires a Bearer access token and puts its user id into
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			writeError(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		userID, err := s.users.Authenticate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
