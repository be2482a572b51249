package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cbodonnell/wordfall/pkg/auth"
	"github.com/cbodonnell/wordfall/pkg/auth/providers"
	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/repositories"
	"github.com/cbodonnell/wordfall/pkg/repositories/models"
)

var _ AuthHandler = &LocalAuthHandler{}

// LocalAuthHandler implements AuthHandler against the users table and signed tokens
type LocalAuthHandler struct {
	repository repositories.Repository
	provider   *providers.JWTAuthProvider
	sessions   *auth.SessionManager
}

type NewLocalAuthHandlerOptions struct {
	Repository repositories.Repository
	Provider   *providers.JWTAuthProvider
	Sessions   *auth.SessionManager
}

func NewLocalAuthHandler(opts NewLocalAuthHandlerOptions) *LocalAuthHandler {
	return &LocalAuthHandler{
		repository: opts.Repository,
		provider:   opts.Provider,
		sessions:   opts.Sessions,
	}
}

// HandleRegister creates a user and logs it in
func (h *LocalAuthHandler) HandleRegister() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.FormValue("username")
		password := r.FormValue("password")

		if err := auth.ValidateUsername(username); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := auth.ValidatePassword(password); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Error("error hashing password: %v", err)
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}

		user, err := h.repository.CreateUser(r.Context(), username, hash)
		if err != nil {
			if repositories.IsUserExists(err) {
				http.Error(w, "Username already exists", http.StatusConflict)
				return
			}
			log.Error("error creating user: %v", err)
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}

		log.Info("Registered user %s (%d)", user.Username, user.ID)
		h.startSession(w, user)
	}
}

// HandleLogin checks the credentials and starts the single session of the user
func (h *LocalAuthHandler) HandleLogin() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.FormValue("username")
		password := r.FormValue("password")

		if username == "" {
			http.Error(w, "Missing username", http.StatusBadRequest)
			return
		}
		if password == "" {
			http.Error(w, "Missing password", http.StatusBadRequest)
			return
		}

		user, err := auth.Authenticate(r.Context(), h.repository, username, password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}
			log.Error("error authenticating user: %v", err)
			http.Error(w, "Failed to login", http.StatusInternalServerError)
			return
		}

		h.startSession(w, user)
	}
}

// HandleLogout ends the session named by the bearer token
func (h *LocalAuthHandler) HandleLogout() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		bearerToken, err := auth.ParseBearerToken(r)
		if err != nil {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := h.provider.VerifyToken(r.Context(), bearerToken)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if err := h.sessions.End(claims.UID, claims.SessionID); err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				http.Error(w, "Session not found", http.StatusUnauthorized)
				return
			}
			log.Error("error ending session: %v", err)
			http.Error(w, "Failed to logout", http.StatusInternalServerError)
			return
		}

		log.Debug("User %d logged out", claims.UID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *LocalAuthHandler) startSession(w http.ResponseWriter, user *models.User) {
	sessionID, _, err := h.sessions.Start(user.ID)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyLoggedIn) {
			http.Error(w, "User already logged in", http.StatusConflict)
			return
		}
		log.Error("error starting session: %v", err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.provider.IssueToken(user.ID, sessionID)
	if err != nil {
		h.sessions.End(user.ID, sessionID)
		log.Error("error issuing token: %v", err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	responsePayload := &LoginResponseBody{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		UserID:    user.ID,
		Username:  user.Username,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responsePayload); err != nil {
		log.Error("error encoding response: %v", err)
		http.Error(w, "error encoding response", http.StatusInternalServerError)
		return
	}
}
