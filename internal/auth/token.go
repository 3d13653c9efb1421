package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig verifies HMAC-signed bearer tokens for the debug REST
// endpoints. There is no external identity provider; the secret is
// shared out of band with whoever operates the server.
type TokenConfig struct {
	secret []byte
}

// Claims carried by an operator token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func NewTokenConfig(secret string) *TokenConfig {
	if secret == "" {
		return &TokenConfig{}
	}
	return &TokenConfig{secret: []byte(secret)}
}

// Configured reports whether a secret is set; unconfigured auth rejects
// every protected request rather than failing open.
func (t *TokenConfig) Configured() bool {
	return len(t.secret) > 0
}

// IssueToken mints a token for operator tooling.
func (t *TokenConfig) IssueToken(name string, ttl time.Duration) (string, error) {
	if !t.Configured() {
		return "", fmt.Errorf("auth secret not configured")
	}
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ValidateToken parses and verifies a bearer token string.
func (t *TokenConfig) ValidateToken(tokenString string) (*Claims, error) {
	if !t.Configured() {
		return nil, fmt.Errorf("auth secret not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// AuthMiddleware guards a subrouter with bearer-token auth.
func (t *TokenConfig) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Configured() {
			http.Error(w, "Auth not configured", http.StatusServiceUnavailable)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := t.ValidateToken(strings.TrimPrefix(header, "Bearer ")); err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
