package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/drillsched/internal/api/shared"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/redact"
	"github.com/phrazzld/drillsched/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	required   bool
}

// NewAuthMiddleware creates a new AuthMiddleware. When required is false,
// requests without an Authorization header pass through anonymously; a
// header that is present must still carry a valid token.
// A nil jwtService is only allowed in optional mode; requests without a
// header are anonymous and requests carrying one are rejected.
func NewAuthMiddleware(jwtService auth.JWTService, required bool) *AuthMiddleware {
	if jwtService == nil && required {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil when authentication is required")
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		required:   required,
	}
}

// Authenticate validates JWT tokens from the Authorization header and
// adds the owner ID to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.required {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}
			log.Debug("anonymous request")
			next.ServeHTTP(w, r)
			return
		}

		// Without a verifier no presented credential can be trusted.
		if m.jwtService == nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				log.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := shared.WithOwnerID(r.Context(), claims.OwnerID)
		ctx = logger.WithLogger(ctx, log.With(slog.String("owner_id", claims.OwnerID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
