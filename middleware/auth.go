package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/utils"
)

type identityKey struct{}

// Authenticator resolves a bearer token into the identity it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func JWTAuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				utils.WriteError(w, fmt.Errorf("authorization header missing: %w", models.ErrUnauthorized))
				return
			}

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logging.Logger.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: Bearer prefix missing for request to %s %s", r.Method, r.URL.Path)
				utils.WriteError(w, fmt.Errorf("bearer token required: %w", models.ErrUnauthorized))
				return
			}

			identity, err := auth.Authenticate(r.Context(), strings.TrimSpace(tokenStr))
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				utils.WriteError(w, err)
				return
			}

			logging.Logger.Debugf("Event ID: JWT_AUTH_SUCCESS, Description: user %s authenticated for %s %s", identity.Username, r.Method, r.URL.Path)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok
}
