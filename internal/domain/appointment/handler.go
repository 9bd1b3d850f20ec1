package appointment

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

func (h *Handler) RegisterRoutes(api *echo.Group, trail *audit.Trail, limiter *ratelimit.Limiter) {
	api.GET("/appointments", h.List,
		trail.Action("appointment_list", "appointment", audit.ClassRestricted, true),
		auth.RequirePermission("appointment_read"),
		schema.ValidateQuery(ListShape()),
		limiter.Middleware("appointments"),
	)
	api.GET("/appointments/:id", h.Get,
		trail.Action("appointment_read", "appointment", audit.ClassRestricted, true),
		auth.RequirePermission("appointment_read"),
		limiter.Middleware("appointments"),
	)
	api.POST("/appointments", h.Create,
		trail.Action("appointment_create", "appointment", audit.ClassRestricted, true),
		auth.RequirePermission("appointment_write"),
		schema.ValidateBody(CreateShape()),
		limiter.Middleware("appointments"),
	)
}

func (h *Handler) Create(c echo.Context) error {
	a, err := h.svc.Create(c.Request().Context(), schema.FromContext(c))
	if err != nil {
		return err
	}
	audit.SetResourceID(c, a.ID.String())
	audit.SetSubjectID(c, a.PatientID.String())
	return respond.Created(c, a, "appointment created")
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.NewValidation([]apperrors.Violation{
			{Field: "id", Message: "must be a valid UUID"},
		})
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	audit.SetResourceID(c, a.ID.String())
	audit.SetSubjectID(c, a.PatientID.String())
	return respond.OK(c, a, "")
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
