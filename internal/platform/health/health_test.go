package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/oncoserve/oncoserve/internal/platform/auth"
)

type unreachableProvider struct{}

func (unreachableProvider) Resolve(context.Context, string) (*auth.Identity, error) {
	return nil, errors.New("unreachable")
}

func (unreachableProvider) Ping(context.Context) error {
	return errors.New("identity provider unreachable")
}

func TestCheck_UnreachableDatabaseIsUnhealthy(t *testing.T) {
	checker := NewChecker(nil, auth.NewStaticProvider(nil), nil)

	report := checker.Check(context.Background())
	if report.Status != StatusUnhealthy {
		t.Fatalf("Status = %s, want %s", report.Status, StatusUnhealthy)
	}
	if report.Checks["database_connection"] {
		t.Error("database check should be false")
	}
}

func TestCheck_IdentityProviderOnlyDegrades(t *testing.T) {
	// Storage drives unhealthy; nothing else may. With the database also
	// down here, the failing provider must not change the tier further and
	// its check must still be reported.
	checker := NewChecker(nil, unreachableProvider{}, nil)

	report := checker.Check(context.Background())
	if report.Status != StatusUnhealthy {
		t.Fatalf("Status = %s", report.Status)
	}
	if report.Checks["identity_provider"] {
		t.Error("identity provider check should be false")
	}
}

func TestCheck_MissingEnvReported(t *testing.T) {
	t.Setenv("ONCOSERVE_TEST_REQUIRED_VAR", "")
	checker := NewChecker(nil, auth.NewStaticProvider(nil), []string{"ONCOSERVE_TEST_REQUIRED_VAR"})

	report := checker.Check(context.Background())
	if report.Checks["environment"] {
		t.Error("environment check should be false when a variable is missing")
	}

	t.Setenv("ONCOSERVE_TEST_REQUIRED_VAR", "set")
	report = checker.Check(context.Background())
	if !report.Checks["environment"] {
		t.Error("environment check should pass when all variables are set")
	}
}

func TestHandler_UnhealthyReturns503(t *testing.T) {
	checker := NewChecker(nil, auth.NewStaticProvider(nil), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := checker.Handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %s", report.Status)
	}
}

func TestHeadHandler_UnreachableDatabase(t *testing.T) {
	checker := NewChecker(nil, auth.NewStaticProvider(nil), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := checker.HeadHandler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("HEAD response must have no body")
	}
}
