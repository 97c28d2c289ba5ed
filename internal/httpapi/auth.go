package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims are the claims in an operator JWT.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

const roleOperator = "operator"

// withAPIKey requires the X-API-Key header to match the configured key.
func (r *Router) withAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if r.cfg.APIKey == "" {
			http.Error(w, `{"error": "api key not configured"}`, http.StatusServiceUnavailable)
			return
		}
		key := req.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(r.cfg.APIKey)) != 1 {
			http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req)
	}
}

// withOperator requires a valid Bearer JWT with the operator role.
func (r *Router) withOperator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		authHeader := req.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, `{"error": "missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, `{"error": "invalid authorization format"}`, http.StatusUnauthorized)
			return
		}

		if !r.validOperatorToken(parts[1]) {
			http.Error(w, `{"error": "invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req)
	}
}

func (r *Router) validOperatorToken(tokenString string) bool {
	if r.cfg.JWTSecret == "" {
		return false
	}

	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(r.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(*OperatorClaims)
	return ok && claims.Role == roleOperator
}

// handleIssueToken exchanges the API key for a short-lived operator JWT.
func (r *Router) handleIssueToken(w http.ResponseWriter, req *http.Request) {
	if r.cfg.APIKey == "" || r.cfg.JWTSecret == "" {
		http.Error(w, `{"error": "operator auth not configured"}`, http.StatusServiceUnavailable)
		return
	}
	key := req.Header.Get("X-API-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(r.cfg.APIKey)) != 1 {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
		return
	}

	expiresAt := time.Now().Add(r.cfg.JWTExpiry)
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: roleOperator,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(r.cfg.JWTSecret))
	if err != nil {
		r.logger.Printf("auth: failed to sign operator token: %v", err)
		http.Error(w, `{"error": "failed to issue token"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":     signed,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
