package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/metrics"
)

// SessionCookieName is the cookie browser clients use to carry the bearer
// credential.
const SessionCookieName = "session_token"

// Authenticate returns middleware that resolves the caller's credential to an
// identity via the provider and attaches it to the request context. Requests
// without a resolvable credential fail with Unauthenticated before any later
// stage runs. Revoked sessions are rejected the same way.
func Authenticate(provider Provider, revocations RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				metrics.AuthFailures.WithLabelValues("missing_credentials").Inc()
				return apperrors.New(apperrors.Unauthenticated, "missing credentials")
			}

			identity, err := provider.Resolve(c.Request().Context(), token)
			if err != nil {
				metrics.AuthFailures.WithLabelValues("invalid_credentials").Inc()
				return err
			}

			if revocations != nil && identity.SessionID != "" {
				revoked, err := revocations.IsRevoked(c.Request().Context(), identity.SessionID)
				if err == nil && revoked {
					metrics.AuthFailures.WithLabelValues("revoked_session").Inc()
					return apperrors.New(apperrors.Unauthenticated, "session has been terminated")
				}
			}

			ctx := WithIdentity(c.Request().Context(), identity)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequirePermission returns per-route middleware that verifies the identity
// holds every listed permission. A single missing permission short-circuits
// with Forbidden before the request body is ever parsed.
func RequirePermission(perms ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFromContext(c.Request().Context())
			if identity == nil {
				return apperrors.New(apperrors.Unauthenticated, "missing credentials")
			}
			for _, required := range perms {
				if !identity.HasPermission(required) {
					metrics.AuthFailures.WithLabelValues("forbidden").Inc()
					return apperrors.New(apperrors.Forbidden,
						"missing required permission: "+required)
				}
			}
			return next(c)
		}
	}
}

// bearerToken extracts the credential from the Authorization header or, for
// browser clients, the session cookie.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
