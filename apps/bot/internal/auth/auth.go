// Package auth guards the admin API with a bearer token checked against a bcrypt hash.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDisabled     = errors.New("admin api disabled")
	ErrInvalidToken = errors.New("invalid admin token")
)

type AdminAuth struct {
	hash []byte
}

// NewAdminAuth accepts the bcrypt hash from ADMIN_TOKEN_HASH. An empty hash
// disables the admin api; a malformed one is an error.
func NewAdminAuth(hash string) (*AdminAuth, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &AdminAuth{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &AdminAuth{hash: []byte(hash)}, nil
}

func (a *AdminAuth) Enabled() bool { return a != nil && len(a.hash) > 0 }

func (a *AdminAuth) Check(token string) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(token)) != nil {
		return ErrInvalidToken
	}
	return nil
}

// Middleware rejects requests without a valid "Authorization: Bearer" header.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := a.Check(bearerToken(r.Header.Get("Authorization")))
		switch {
		case errors.Is(err, ErrDisabled):
			writeError(w, http.StatusServiceUnavailable, "admin api disabled")
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HashToken produces the value to put in ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
