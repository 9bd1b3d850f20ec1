package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/metrics"
)

const (
	resourceIDKey = "audit_resource_id"
	subjectIDKey  = "audit_subject_id"
	detailsKey    = "audit_details"
)

// SetResourceID publishes the concrete record ID to the audit stage. List
// operations pass ResourceMultiple.
func SetResourceID(c echo.Context, id string) {
	c.Set(resourceIDKey, id)
}

// SetSubjectID publishes a cross-reference subject (e.g. the patient a
// created appointment belongs to).
func SetSubjectID(c echo.Context, id string) {
	c.Set(subjectIDKey, id)
}

// AddDetail attaches one key to the entry's details map.
func AddDetail(c echo.Context, key string, value interface{}) {
	details, _ := c.Get(detailsKey).(map[string]interface{})
	if details == nil {
		details = make(map[string]interface{})
		c.Set(detailsKey, details)
	}
	details[key] = value
}

// Trail builds the audit stage for each route.
type Trail struct {
	recorder Recorder
	logger   zerolog.Logger
}

func NewTrail(recorder Recorder, logger zerolog.Logger) *Trail {
	return &Trail{recorder: recorder, logger: logger}
}

// Action returns per-route middleware that records exactly one entry for the
// request. It sits directly after authentication in the chain, so every
// downstream outcome is observed: authorization, validation and rate-limit
// rejections are audited as FAILURE, and so is a failed domain operation.
// Requests that never resolved an identity are not audited (no actor to
// attribute).
//
// Recording happens synchronously before the response is finalized, on a
// context detached from the request so a client disconnect cannot abort the
// write. A recorder failure never masks the outcome being recorded.
func (t *Trail) Action(action, resourceType string, class Classification, phi bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			identity := auth.IdentityFromContext(c.Request().Context())
			if identity == nil {
				return err
			}

			req := c.Request()
			entry := &Entry{
				ID:             uuid.New(),
				UserID:         identity.ID,
				UserEmail:      identity.Email,
				Action:         action,
				ResourceType:   resourceType,
				ResourceID:     ResourceUnknown,
				IPAddress:      c.RealIP(),
				UserAgent:      req.UserAgent(),
				SessionID:      identity.SessionID,
				Outcome:        OutcomeSuccess,
				PHIAccessed:    phi,
				Classification: class,
				RecordedAt:     time.Now().UTC(),
			}

			if id, ok := c.Get(resourceIDKey).(string); ok && id != "" {
				entry.ResourceID = id
			}
			if id, ok := c.Get(subjectIDKey).(string); ok {
				entry.SubjectID = id
			}
			if details, ok := c.Get(detailsKey).(map[string]interface{}); ok {
				entry.Details = details
			}

			if err != nil {
				appErr := apperrors.From(err)
				entry.Outcome = OutcomeFailure
				if entry.Details == nil {
					entry.Details = make(map[string]interface{})
				}
				entry.Details["error"] = appErr.Message
				entry.Details["error_kind"] = string(appErr.Kind)
			}

			// Fire to completion even if the caller disconnected mid-pipeline.
			recordCtx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), 5*time.Second)
			defer cancel()
			if recErr := t.recorder.Record(recordCtx, entry); recErr != nil {
				metrics.AuditWriteFailures.Inc()
				t.logger.Error().Err(recErr).
					Str("action", action).
					Str("user_id", identity.ID).
					Msg("failed to record audit entry")
			}

			return err
		}
	}
}
