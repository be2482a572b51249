package providers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	tokenIssuer     = "wordfall"
)

var _ AuthProvider = &JWTAuthProvider{}
var _ TokenIssuer = &JWTAuthProvider{}

// JWTAuthProvider issues and verifies HS256 tokens whose subject is the user ID.
type JWTAuthProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewJWTAuthProvider(secret string, ttl time.Duration) (*JWTAuthProvider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTAuthProvider{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (p *JWTAuthProvider) TTL() time.Duration {
	return p.ttl
}

func (p *JWTAuthProvider) IssueToken(userID int32, sessionID string) (string, time.Time, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error signing token: %v", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken verifies the signature, issuer and expiry of a token
func (p *JWTAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("error verifying token: %v", err)
	}

	uid, err := strconv.ParseInt(claims.Subject, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("error parsing token subject: %v", err)
	}

	return &TokenClaims{
		UID:       int32(uid),
		SessionID: claims.SessionID,
	}, nil
}
