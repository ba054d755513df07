package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/http/response"
	"github.com/atifjaved999/mini-coaching/internal/repository"
	"github.com/atifjaved999/mini-coaching/internal/security"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// Authenticator turns a bearer token into the calling user. Verification is
// stateless; the user record (with roles) is loaded fresh per request so
// role changes apply immediately even while old tokens are still live.
type Authenticator struct {
	tokens *security.TokenManager
	users  repository.UserRepository
}

func NewAuthenticator(tokens *security.TokenManager, users repository.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing token", nil)
			return
		}
		claims, err := a.tokens.Parse(raw)
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}
		user, err := a.users.FindByID(userID)
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	return parts[len(parts)-1]
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}
