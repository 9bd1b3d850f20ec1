package schema

import (
	"encoding/json"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

const validatedKey = "schema_validated"

// ValidateBody returns per-route middleware that parses the JSON body,
// validates it against the shape and stores the normalized value map on the
// context. Malformed or violating bodies short-circuit with a Validation
// error before the handler runs.
func ValidateBody(shape *Shape) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var raw map[string]interface{}
			if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
				// The body-limit reader rejects oversize chunked bodies
				// mid-read with a 413 HTTPError; keep it as-is instead of
				// reporting a malformed body.
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					return httpErr
				}
				return apperrors.NewValidation([]apperrors.Violation{
					{Field: "body", Message: "must be a JSON object"},
				})
			}

			normalized, violations := shape.Validate(raw)
			if len(violations) > 0 {
				return apperrors.NewValidation(violations)
			}

			c.Set(validatedKey, normalized)
			return next(c)
		}
	}
}

// ValidateQuery returns per-route middleware that validates the declared
// query parameters and stores the normalized map on the context.
func ValidateQuery(shape *Shape) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := make(map[string]string, len(shape.Fields))
			for _, f := range shape.Fields {
				raw[f.Name] = c.QueryParam(f.Name)
			}

			normalized, violations := shape.ValidateStrings(raw)
			if len(violations) > 0 {
				return apperrors.NewValidation(violations)
			}

			c.Set(validatedKey, normalized)
			return next(c)
		}
	}
}

// FromContext returns the normalized value map stored by ValidateBody or
// ValidateQuery. Handlers behind a validation stage can rely on it being set.
func FromContext(c echo.Context) map[string]interface{} {
	m, _ := c.Get(validatedKey).(map[string]interface{})
	return m
}
