package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, role string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(method, adminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestRequireAdmin(t *testing.T) {
	handler := NewAdminAuth(testSecret).RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
		{"wrong key", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("another-secret"), "admin", time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "admin", -time.Minute), http.StatusUnauthorized},
		{"wrong role", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "user", time.Hour), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "admin", time.Hour), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/mutation-search/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_RefreshRequiresAdminWhenConfigured(t *testing.T) {
	env := newTestEnvWithConfig(t, nil, ServerConfig{Port: "0", AdminTokenSecret: testSecret})

	denied := env.do(t, http.MethodPost, "/api/v1/mutation-search/refresh")
	assert.Equal(t, http.StatusUnauthorized, denied.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mutation-search/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "admin", time.Hour))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	search := env.do(t, http.MethodGet, "/api/v1/mutation-search?voie=alsace")
	assert.Equal(t, http.StatusOK, search.Code, "read endpoints stay public")
}
