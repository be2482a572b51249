package network

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrOffline is returned by every call of an APIClient created without a server
	ErrOffline = errors.New("offline")
)

// APIError is a non-2xx reply from the server. Message is safe to show to the player.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}

// UserMessage returns the text to show the player for err
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrOffline) {
		return "Playing offline"
	}
	return "Server unavailable, try again later"
}
