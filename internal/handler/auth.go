package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/weddify/marketplace/internal/domain/user"
)

// apiKeyHeader carries the caller's API key.
const apiKeyHeader = "api_key"

// userKey is the context key for the authenticated user.
type userKey struct{}

// UserFromContext returns the authenticated user stored by the auth
// middleware, or nil.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey{}).(*user.User)
	return u
}

// Authenticator authenticates requests via HMAC-SHA256 peppered API keys and
// resolves them to accounts.
type Authenticator struct {
	apikeys user.APIKeyRepository
	users   user.Repository
	pepper  []byte
}

// NewAuthenticator creates an Authenticator with the given repositories and
// HMAC pepper.
func NewAuthenticator(apikeys user.APIKeyRepository, users user.Repository, pepper []byte) *Authenticator {
	return &Authenticator{
		apikeys: apikeys,
		users:   users,
		pepper:  pepper,
	}
}

// Middleware rejects requests without a valid API key and stores the resolved
// account in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(apiKeyHeader)
		if key == "" {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "missing API key")
			return
		}

		u, err := a.authenticate(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusUnauthorized, kindUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

// authenticate computes the HMAC-SHA256 of the presented key, looks it up,
// and re-compares in constant time before resolving the owning account.
func (a *Authenticator) authenticate(ctx context.Context, key string) (*user.User, error) {
	mac := hmac.New(sha256.New, a.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := a.apikeys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return nil, err
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, user.ErrNotFound
	}

	return a.users.GetByID(ctx, info.UserID)
}
