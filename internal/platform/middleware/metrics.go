package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/metrics"
)

// Metrics returns middleware that records request counts and latency per
// route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			// On the error path the response is written after this
			// middleware returns, so the status must come from the error
			// itself, not the (still zero-valued) response.
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				} else {
					status = apperrors.HTTPStatus(apperrors.KindOf(err))
				}
			}

			metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
