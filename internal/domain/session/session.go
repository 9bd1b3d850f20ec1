// Package session exposes introspection and logout for the caller's own
// authenticated session.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/audit"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/ratelimit"
	"github.com/oncoserve/oncoserve/internal/platform/respond"
)

// Info is the introspection view of the current session.
type Info struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions"`
	SessionID   string   `json:"sessionId,omitempty"`
}

type Handler struct {
	revocations auth.RevocationStore
	sessionTTL  time.Duration
}

func NewHandler(revocations auth.RevocationStore, sessionTTL time.Duration) *Handler {
	return &Handler{revocations: revocations, sessionTTL: sessionTTL}
}

func (h *Handler) RegisterRoutes(api *echo.Group, trail *audit.Trail, limiter *ratelimit.Limiter) {
	api.GET("/session", h.Introspect,
		limiter.Middleware("auth"),
	)
	api.DELETE("/session", h.Logout,
		trail.Action("logout", "session", audit.ClassInternal, false),
		limiter.Middleware("auth"),
	)
}

// Introspect reflects the resolved identity back to the caller. It is
// read-only and leaves no audit trace.
func (h *Handler) Introspect(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return apperrors.New(apperrors.Unauthenticated, "missing credentials")
	}
	info := Info{
		UserID:      ident.ID,
		Email:       ident.Email,
		Role:        ident.Role,
		Department:  ident.Department,
		Permissions: ident.Permissions,
		SessionID:   ident.SessionID,
	}
	if info.Permissions == nil {
		info.Permissions = []string{}
	}
	return respond.OK(c, info, "")
}

// Logout revokes the caller's session and clears the session cookie.
// Revocation is held for the configured session lifetime, after which the
// token has expired on its own. Logging out twice is harmless: the second
// call re-arms the same revocation marker.
func (h *Handler) Logout(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return apperrors.New(apperrors.Unauthenticated, "missing credentials")
	}
	if ident.SessionID != "" {
		if err := h.revocations.Revoke(c.Request().Context(), ident.SessionID, h.sessionTTL); err != nil {
			return apperrors.Wrap(apperrors.Storage, "failed to revoke session", err)
		}
		audit.SetResourceID(c, ident.SessionID)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	return respond.OK(c, map[string]interface{}{"loggedOut": true}, "logged out")
}
