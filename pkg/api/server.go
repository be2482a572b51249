package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/wordfall/pkg/api/handlers"
	"github.com/cbodonnell/wordfall/pkg/api/middleware"
	"github.com/cbodonnell/wordfall/pkg/auth"
	authhandlers "github.com/cbodonnell/wordfall/pkg/auth/handlers"
	authproviders "github.com/cbodonnell/wordfall/pkg/auth/providers"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/cbodonnell/wordfall/pkg/network"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/repositories"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

const (
	// MaxRequestBodyBytes limits every request body
	MaxRequestBodyBytes = 10 * 1024
	RequestTimeout      = 10 * time.Second
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port          int
	TLS           *TLSConfig
	AuthProvider  *authproviders.JWTAuthProvider
	Sessions      *auth.SessionManager
	Repository    repositories.Repository
	ClientManager *network.ClientManager
	ScoreQueue    queue.Queue[messages.ServerNewScore]
	// DefaultWords is served when the repository has no words
	DefaultWords []string
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the API routes. The leaderboard feed is mounted outside of
// the request timeout and body limit since it holds a hijacked connection.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	authHandler := authhandlers.NewLocalAuthHandler(authhandlers.NewLocalAuthHandlerOptions{
		Repository: opts.Repository,
		Provider:   opts.AuthProvider,
		Sessions:   opts.Sessions,
	})
	authMiddleware := middleware.NewAuthMiddleware(opts.AuthProvider, opts.Sessions, opts.Repository)

	r := mux.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.RequestLogger, chimw.Recoverer)

	r.Handle("/leaderboard/ws", network.HandleWS(opts.ClientManager)).Methods(http.MethodGet)

	rest := r.PathPrefix("/").Subrouter()
	rest.Use(chimw.Timeout(RequestTimeout), middleware.MaxBytes(MaxRequestBodyBytes))

	rest.HandleFunc("/healthz", handlers.HandleHealth()).Methods(http.MethodGet)
	rest.HandleFunc("/auth/register", authHandler.HandleRegister()).Methods(http.MethodPost)
	rest.HandleFunc("/auth/login", authHandler.HandleLogin()).Methods(http.MethodPost)
	rest.HandleFunc("/auth/logout", authHandler.HandleLogout()).Methods(http.MethodPost)
	rest.HandleFunc("/words", handlers.HandleListWords(opts.Repository, opts.DefaultWords)).Methods(http.MethodGet)
	rest.HandleFunc("/leaderboard", handlers.HandleLeaderboard(opts.Repository)).Methods(http.MethodGet)
	rest.Handle("/scores", authMiddleware(handlers.HandleSubmitScore(opts.Repository, opts.ScoreQueue))).Methods(http.MethodPost)

	return r
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
