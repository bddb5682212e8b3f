package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

// AdminAuth проверяет JWT (HS256) служебных маршрутов
type AdminAuth struct {
	signingKey []byte
}

func NewAdminAuth(signingKey string) *AdminAuth {
	return &AdminAuth{signingKey: []byte(signingKey)}
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (a *AdminAuth) parse(tokenString string) (*adminClaims, error) {
	claims := &adminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAdmin: 401 без токена или с плохим токеном, 403 если роль не admin
func (a *AdminAuth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextkeys.LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader {
			WriteJSONError(w, http.StatusUnauthorized, "bearer token required")
			return
		}

		claims, err := a.parse(tokenString)
		if err != nil {
			fields := port.Fields{"error": err.Error()}
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.Warn("Expired admin token", fields)
			} else {
				logger.Warn("Invalid admin token", fields)
			}
			WriteJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.Role != adminRole {
			logger.Warn("Admin role required", port.Fields{"role": claims.Role, "subject": claims.Subject})
			WriteJSONError(w, http.StatusForbidden, "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}
