package patient

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/audit"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/ratelimit"
	"github.com/oncoserve/oncoserve/internal/platform/respond"
	"github.com/oncoserve/oncoserve/internal/platform/schema"
	"github.com/oncoserve/oncoserve/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the patient endpoints with their full per-route
// pipeline. The audit stage sits outermost so authorization, validation and
// rate-limit rejections are all recorded against the resolved identity.
func (h *Handler) RegisterRoutes(api *echo.Group, trail *audit.Trail, limiter *ratelimit.Limiter) {
	api.GET("/patients", h.List,
		trail.Action("patient_list", "patient", audit.ClassRestricted, true),
		auth.RequirePermission("patient_read"),
		schema.ValidateQuery(ListShape()),
		limiter.Middleware("patients"),
	)
	api.GET("/patients/:id", h.Get,
		trail.Action("patient_read", "patient", audit.ClassRestricted, true),
		auth.RequirePermission("patient_read"),
		limiter.Middleware("patients"),
	)
	api.POST("/patients", h.Create,
		trail.Action("patient_create", "patient", audit.ClassRestricted, true),
		auth.RequirePermission("patient_write"),
		schema.ValidateBody(CreateShape()),
		limiter.Middleware("patients"),
	)
}

func (h *Handler) Create(c echo.Context) error {
	p, err := h.svc.Create(c.Request().Context(), schema.FromContext(c))
	if err != nil {
		return err
	}
	audit.SetResourceID(c, p.ID.String())
	audit.SetSubjectID(c, p.ID.String())
	return respond.Created(c, p, "patient created")
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NewValidation([]apperrors.Violation{
			{Field: "id", Message: "must be a valid UUID"},
		})
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	audit.SetResourceID(c, p.ID.String())
	audit.SetSubjectID(c, p.ID.String())
	return respond.OK(c, p, "")
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), schema.FromContext(c), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	audit.SetResourceID(c, audit.ResourceMultiple)
	audit.AddDetail(c, "total_matched", total)
	return respond.OK(c, pagination.NewPage(items, total, pg.Limit, pg.Offset), "")
}
