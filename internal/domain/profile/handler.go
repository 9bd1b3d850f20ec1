package profile

import (
	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/audit"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/ratelimit"
	"github.com/oncoserve/oncoserve/internal/platform/respond"
	"github.com/oncoserve/oncoserve/internal/platform/schema"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the profile endpoints. Any authenticated user may
// read and update their own profile, so no permission stage is attached.
func (h *Handler) RegisterRoutes(api *echo.Group, trail *audit.Trail, limiter *ratelimit.Limiter) {
	api.GET("/profile", h.Get,
		trail.Action("profile_read", "profile", audit.ClassInternal, false),
		limiter.Middleware("profile"),
	)
	api.PUT("/profile", h.Update,
		trail.Action("profile_update", "profile", audit.ClassInternal, false),
		schema.ValidateBody(UpdateShape()),
		limiter.Middleware("profile"),
	)
}

func (h *Handler) Get(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return apperrors.New(apperrors.Unauthenticated, "missing credentials")
	}
	p, err := h.svc.Get(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	audit.SetResourceID(c, p.UserID.String())
	return respond.OK(c, p, "")
}

func (h *Handler) Update(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return apperrors.New(apperrors.Unauthenticated, "missing credentials")
	}
	body := schema.FromContext(c)
	p, err := h.svc.Update(c.Request().Context(), ident, body)
	if err != nil {
		return err
	}
	audit.SetResourceID(c, p.UserID.String())
	fields := make([]string, 0, len(body))
	for k := range body {
		fields = append(fields, k)
	}
	audit.AddDetail(c, "updated_fields", fields)
	return respond.OK(c, p, "profile updated")
}
