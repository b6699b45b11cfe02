package auth

import (
	"context"
	"net/http"
)

type contextKey string

const clerkKey contextKey = "clerk_username"

// Middleware guards clerk-only endpoints. Requests without a valid Bearer
// token are rejected with 401.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			username, err := issuer.Verify(rawToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), clerkKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClerkUsername extracts the authenticated clerk's username in handlers.
func ClerkUsername(ctx context.Context) string {
	if username, ok := ctx.Value(clerkKey).(string); ok {
		return username
	}
	return ""
}
