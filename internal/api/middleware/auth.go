package middleware

import (
	"net/http"

	"eskytrack/internal/api/util"
)

type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware validates HS256 bearer tokens. An empty secret disables
// authentication.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.secret) == 0 || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, err := util.BearerToken(r)
		if err != nil {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := util.ParseToken(m.secret, token)
		if err != nil {
			http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(util.WithClaims(r.Context(), claims)))
	})
}
