package health

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/db"
)

// Status is the aggregated service health tier.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const checkTimeout = 5 * time.Second

// Report is the health endpoint payload.
type Report struct {
	Status Status          `json:"status"`
	Checks map[string]bool `json:"checks"`
	Pool   db.PoolStats    `json:"pool"`
	Time   time.Time       `json:"time"`
}

// Checker aggregates storage, identity-provider and configuration health.
type Checker struct {
	pool        *pgxpool.Pool
	provider    auth.Provider
	requiredEnv []string
}

func NewChecker(pool *pgxpool.Pool, provider auth.Provider, requiredEnv []string) *Checker {
	return &Checker{pool: pool, provider: provider, requiredEnv: requiredEnv}
}

// Check runs every probe. Storage drives unhealthy; a failing identity
// provider or missing environment only degrades, since read traffic against
// cached sessions can still be served.
func (h *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	dbOK := h.pool != nil && h.pool.Ping(ctx) == nil
	idpOK := h.provider.Ping(ctx) == nil
	envOK := h.envPresent()

	status := StatusHealthy
	switch {
	case !dbOK:
		status = StatusUnhealthy
	case !idpOK || !envOK:
		status = StatusDegraded
	}

	return Report{
		Status: status,
		Checks: map[string]bool{
			"database_connection": dbOK,
			"identity_provider":   idpOK,
			"environment":         envOK,
		},
		Pool: db.GetPoolStats(h.pool),
		Time: time.Now().UTC(),
	}
}

func (h *Checker) envPresent() bool {
	for _, name := range h.requiredEnv {
		if os.Getenv(name) == "" {
			return false
		}
	}
	return true
}

// Handler serves GET /health: 200 for healthy or degraded, 503 otherwise.
func (h *Checker) Handler(c echo.Context) error {
	report := h.Check(c.Request().Context())
	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, report)
}

// HeadHandler serves HEAD /health with a status code derived from the
// primary storage check alone.
func (h *Checker) HeadHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()
	if h.pool == nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	if err := h.pool.Ping(ctx); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
