package api

import (
	"context"
	"net/http"

	"github.com/lumenai/lumen/pkg/auth"
	"github.com/lumenai/lumen/pkg/model"
)

type contextKey string

const userContextKey contextKey = "user"

// requireUser resolves the session cookie to a stored user and injects it
// into the request context. Anything behind this middleware can assume an
// authenticated user.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		userID, err := s.sessions.Verify(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session")
			return
		}

		user, err := s.store.GetUserByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) model.User {
	user, _ := ctx.Value(userContextKey).(model.User)
	return user
}
