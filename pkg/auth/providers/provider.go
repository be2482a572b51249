package providers

import (
	"context"
	"time"
)

type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

// TokenIssuer signs tokens for users that logged in locally.
type TokenIssuer interface {
	IssueToken(userID int32, sessionID string) (string, time.Time, error)
}

type TokenClaims struct {
	UID       int32  `json:"uid"`
	SessionID string `json:"sid"`
}
