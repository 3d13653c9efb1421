package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	cfg := NewTokenConfig("test-secret")

	token, err := cfg.IssueToken("ops", time.Minute)
	require.NoError(t, err)

	claims, err := cfg.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Name)
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	cfg := NewTokenConfig("test-secret")

	expired, err := cfg.IssueToken("ops", -time.Minute)
	require.NoError(t, err)
	_, err = cfg.ValidateToken(expired)
	assert.Error(t, err)

	other := NewTokenConfig("different-secret")
	foreign, err := other.IssueToken("ops", time.Minute)
	require.NoError(t, err)
	_, err = cfg.ValidateToken(foreign)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := NewTokenConfig("test-secret")
	handler := cfg.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/rooms", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := cfg.IssueToken("ops", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/api/rooms", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unconfigured secret fails closed", func(t *testing.T) {
		bare := NewTokenConfig("")
		h := bare.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/rooms", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
