package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
)

func testIdentity() *auth.Identity {
	return &auth.Identity{
		ID:          "user-1",
		Email:       "doc@example.com",
		Role:        "ONCOLOGIST",
		Permissions: []string{"patient_read"},
		SessionID:   "sess-1",
	}
}

func authedContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("User-Agent", "test-client/1.0")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := auth.WithIdentity(c.Request().Context(), testIdentity())
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func TestAction_RecordsSuccess(t *testing.T) {
	recorder := NewMemoryRecorder()
	trail := NewTrail(recorder, zerolog.Nop())
	c := authedContext(t)

	handler := func(c echo.Context) error {
		SetResourceID(c, "patient-123")
		SetSubjectID(c, "patient-123")
		AddDetail(c, "total_matched", 1)
		return c.String(http.StatusOK, "ok")
	}

	mw := trail.Action("patient_read", "patient", ClassRestricted, true)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %s", e.Outcome)
	}
	if e.Action != "patient_read" || e.ResourceType != "patient" {
		t.Errorf("action/resource = %s/%s", e.Action, e.ResourceType)
	}
	if e.ResourceID != "patient-123" || e.SubjectID != "patient-123" {
		t.Errorf("resource/subject = %s/%s", e.ResourceID, e.SubjectID)
	}
	if e.UserID != "user-1" || e.SessionID != "sess-1" {
		t.Errorf("user/session = %s/%s", e.UserID, e.SessionID)
	}
	if !e.PHIAccessed || e.Classification != ClassRestricted {
		t.Errorf("phi/classification = %v/%s", e.PHIAccessed, e.Classification)
	}
	if e.Details["total_matched"] != 1 {
		t.Errorf("details = %+v", e.Details)
	}
}

func TestAction_RecordsFailureWithErrorKind(t *testing.T) {
	recorder := NewMemoryRecorder()
	trail := NewTrail(recorder, zerolog.Nop())
	c := authedContext(t)

	handler := func(c echo.Context) error {
		return apperrors.New(apperrors.NotFound, "patient not found")
	}

	mw := trail.Action("patient_read", "patient", ClassRestricted, true)
	err := mw(handler)(c)
	if apperrors.KindOf(err) != apperrors.NotFound {
		t.Fatalf("original error must pass through, got %v", err)
	}

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Outcome != OutcomeFailure {
		t.Errorf("Outcome = %s", e.Outcome)
	}
	if e.Details["error_kind"] != string(apperrors.NotFound) {
		t.Errorf("details = %+v", e.Details)
	}
	if e.ResourceID != ResourceUnknown {
		t.Errorf("ResourceID = %s, want %s", e.ResourceID, ResourceUnknown)
	}
}

func TestAction_AuditsRejectionsFromLaterStages(t *testing.T) {
	recorder := NewMemoryRecorder()
	trail := NewTrail(recorder, zerolog.Nop())
	c := authedContext(t)

	// Chain as wired in the routes: audit outermost, then authorization.
	chain := trail.Action("patient_create", "patient", ClassRestricted, true)(
		auth.RequirePermission("patient_write")(func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		}))

	err := chain(c)
	if apperrors.KindOf(err) != apperrors.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("denied request must still be audited, got %d entries", len(entries))
	}
	if entries[0].Outcome != OutcomeFailure {
		t.Errorf("Outcome = %s", entries[0].Outcome)
	}
	if entries[0].Details["error_kind"] != string(apperrors.Forbidden) {
		t.Errorf("details = %+v", entries[0].Details)
	}
}

func TestAction_SkipsUnauthenticatedRequests(t *testing.T) {
	recorder := NewMemoryRecorder()
	trail := NewTrail(recorder, zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := trail.Action("patient_read", "patient", ClassRestricted, true)
	_ = mw(func(c echo.Context) error {
		return apperrors.New(apperrors.Unauthenticated, "missing credentials")
	})(c)

	if entries := recorder.Entries(); len(entries) != 0 {
		t.Fatalf("no identity means no entry, got %d", len(entries))
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, *Entry) error {
	return errors.New("sink unavailable")
}

func TestAction_RecorderFailureNeverMasksOutcome(t *testing.T) {
	trail := NewTrail(failingRecorder{}, zerolog.Nop())
	c := authedContext(t)

	mw := trail.Action("patient_read", "patient", ClassRestricted, true)
	if err := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c); err != nil {
		t.Fatalf("recorder failure leaked to the caller: %v", err)
	}
}

func TestTee_AttemptsEveryRecorder(t *testing.T) {
	memory := NewMemoryRecorder()
	tee := Tee{failingRecorder{}, memory}

	err := tee.Record(context.Background(), &Entry{Action: "patient_read"})
	if err == nil {
		t.Fatal("expected the first recorder's error to surface")
	}
	if len(memory.Entries()) != 1 {
		t.Fatal("second recorder should still receive the entry")
	}
}
