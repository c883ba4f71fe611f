package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/fourline-game/fourline-backend/repository"
	"github.com/fourline-game/fourline-backend/responses"
	"github.com/fourline-game/fourline-backend/token"
	"github.com/fourline-game/fourline-backend/utils"
)

type contextKey string

// UserIDKey holds the authenticated userId in the request context.
const UserIDKey contextKey = "authUserId"

// SessionValidation guards a route with the stored-session check: the
// client presents X-User-ID plus a bearer sessionId, and the token is
// re-derived from the request's client IP before comparison. A failure is
// always the same 401.
func SessionValidation(store repository.Store) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			sessionID := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if userID == "" || sessionID == "" {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
				return
			}

			sess, err := store.Session(r.Context(), userID, sessionID)
			if err != nil || sess.Expired(time.Now()) {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
				return
			}

			user, err := store.UserByID(r.Context(), userID)
			if err != nil {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
				return
			}

			derived := token.Derive(clientIP(r), user.ID, user.Username)
			if !token.Verify(derived, sess.Token) {
				utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
