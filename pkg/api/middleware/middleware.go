package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cbodonnell/wordfall/pkg/auth"
	authproviders "github.com/cbodonnell/wordfall/pkg/auth/providers"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/repositories"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type ContextKey int

const (
	// UserContextKey is the key used to store the user in the request context
	UserContextKey ContextKey = iota
)

// SessionValidator reports whether a session is still live
type SessionValidator interface {
	Valid(userID int32, sessionID string) bool
}

func NewAuthMiddleware(authProvider authproviders.AuthProvider, sessions SessionValidator, repository repositories.Repository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearerToken, err := auth.ParseBearerToken(r)
			if err != nil {
				log.Debug("failed to parse bearer token: %v", err)
				http.Error(w, "failed to parse bearer token", http.StatusUnauthorized)
				return
			}

			token, err := authProvider.VerifyToken(r.Context(), bearerToken)
			if err != nil {
				log.Debug("failed to verify token: %v", err)
				http.Error(w, "failed to verify token", http.StatusUnauthorized)
				return
			}

			if !sessions.Valid(token.UID, token.SessionID) {
				http.Error(w, "session expired", http.StatusUnauthorized)
				return
			}

			user, err := repository.GetUserByID(r.Context(), token.UID)
			if err != nil {
				if repositories.IsNotFound(err) {
					http.Error(w, "user not found", http.StatusUnauthorized)
					return
				}
				log.Error("failed to get user: %v", err)
				http.Error(w, "failed to get user", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MaxBytes limits the size of request bodies
func MaxBytes(n int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs every request at debug level with its status and duration
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), chimw.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
