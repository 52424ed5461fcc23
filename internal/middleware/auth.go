package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paltabank/bank-api/internal/api/httpx"
	"github.com/paltabank/bank-api/internal/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

func UserID(ctx context.Context) (string, bool) {
	c, ok := ClaimsFrom(ctx)
	if !ok {
		return "", false
	}
	return c.Subject, true
}

type AuthMiddleware struct {
	tp *auth.TokenProvider
}

func NewAuthMiddleware(tp *auth.TokenProvider) *AuthMiddleware {
	return &AuthMiddleware{tp: tp}
}

// Auth admits only requests carrying a verifiable bearer access token.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, err := m.tp.VerifyAccessToken(token)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
