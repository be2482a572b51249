package handlers

import "net/http"

// AuthHandler is an interface for handling authentication requests
type AuthHandler interface {
	HandleRegister() func(w http.ResponseWriter, r *http.Request)
	HandleLogin() func(w http.ResponseWriter, r *http.Request)
	HandleLogout() func(w http.ResponseWriter, r *http.Request)
}

// LoginResponseBody is the response body for the register and login endpoints
type LoginResponseBody struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    int32  `json:"user_id"`
	Username  string `json:"username"`
}
