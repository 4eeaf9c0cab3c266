package handler

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AdminPasswordEnvKey is the environment variable name for the bridge password
	AdminPasswordEnvKey = "LSDIR_ADMIN_PASSWORD"
	// AuthHeader is the header name for JWT authentication
	AuthHeader = "Authorization"
	// TokenQueryParam carries the token for WebSocket clients, which cannot set headers
	TokenQueryParam = "token"
	// TokenExpiry is the JWT token expiry duration
	TokenExpiry = 7 * 24 * time.Hour // 7 days
)

// AuthMiddleware provides JWT authentication for the command bridge
type AuthMiddleware struct {
	password string
}

// NewAuthMiddleware creates an auth middleware keyed by LSDIR_ADMIN_PASSWORD
func NewAuthMiddleware() *AuthMiddleware {
	return NewAuthMiddlewareWithPassword(os.Getenv(AdminPasswordEnvKey))
}

func NewAuthMiddlewareWithPassword(password string) *AuthMiddleware {
	return &AuthMiddleware{password: password}
}

// IsEnabled returns true if authentication is enabled
func (m *AuthMiddleware) IsEnabled() bool {
	return m.password != ""
}

// GenerateToken generates a JWT token
func (m *AuthMiddleware) GenerateToken() (string, error) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "lsdir",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.password))
}

// ValidateToken validates a JWT token
func (m *AuthMiddleware) ValidateToken(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.password), nil
	}, jwt.WithIssuer("lsdir"))

	return err == nil && token.Valid
}

// Wrap wraps a handler with JWT authentication
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.IsEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" || !m.ValidateToken(token) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// VerifyPassword checks if the provided password is correct
func (m *AuthMiddleware) VerifyPassword(password string) bool {
	if !m.IsEnabled() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(m.password), []byte(password)) == 1
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get(AuthHeader); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get(TokenQueryParam)
}
